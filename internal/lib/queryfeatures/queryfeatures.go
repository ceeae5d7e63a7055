// Package queryfeatures переводит параметры строки запроса в запрос MongoDB.
//
// Шаги применяются в фиксированном порядке: фильтр, сортировка, выбор полей,
// пагинация. Результат - ещё не выполненный Query, который хранилище
// превращает в options.Find.
package queryfeatures

import (
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/natours/internal/apperr"
)

const (
	// DefaultPage номер страницы по умолчанию.
	DefaultPage = 1
	// DefaultLimit размер страницы по умолчанию.
	DefaultLimit = 100
	// MaxLimit наибольший размер страницы.
	MaxLimit = 1000
	// MaxSkip наибольшее смещение. Страницы дальше него пусты при любом размере коллекции,
	// а skip+limit остаётся в пределах int64.
	MaxSkip = math.MaxInt64 / 2

	versionField = "__v"
)

var reserved = map[string]bool{"page": true, "sort": true, "limit": true, "fields": true}

var operators = map[string]string{"gte": "$gte", "gt": "$gt", "lte": "$lte", "lt": "$lt"}

var (
	keyRe   = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*)(?:\[([A-Za-z]+)\])?$`)
	fieldRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
)

// Kind тип поля для приведения значений из строки запроса.
type Kind int

const (
	String Kind = iota
	Number
	Bool
	Date
	ObjectID
)

// Schema типы известных полей ресурса. Поля вне схемы сравниваются как строки.
type Schema map[string]Kind

// Options настройки построителя для конкретного ресурса.
type Options struct {
	Schema Schema
	// Hidden поля, которые никогда не попадают в проекцию.
	Hidden []string
	// DefaultSort сортировка, если параметр sort не задан.
	DefaultSort string
}

// Query составной запрос: фильтр, сортировка, проекция, skip и limit.
type Query struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.M
	Skip       int64
	Limit      int64
	Page       int64
}

// FindOptions переводит Query в опции драйвера.
func (q Query) FindOptions() *options.FindOptions {
	opts := options.Find().SetSkip(q.Skip).SetLimit(q.Limit)
	if len(q.Sort) > 0 {
		opts.SetSort(q.Sort)
	}
	if len(q.Projection) > 0 {
		opts.SetProjection(q.Projection)
	}
	return opts
}

// Features пошагово собирает Query. Первая ошибка запоминается и
// возвращается из Query, последующие шаги её не затирают.
type Features struct {
	base   bson.M
	params url.Values
	opts   Options
	query  Query
	err    error
}

// New начинает построение запроса поверх базового фильтра base.
func New(base bson.M, params url.Values, opts Options) *Features {
	if opts.DefaultSort == "" {
		opts.DefaultSort = "-createdAt"
	}
	return &Features{
		base:   base,
		params: params,
		opts:   opts,
		query: Query{
			Filter: bson.M{},
			Page:   DefaultPage,
			Limit:  DefaultLimit,
		},
	}
}

// Build применяет все шаги по порядку.
func Build(base bson.M, params url.Values, opts Options) (Query, error) {
	return New(base, params, opts).Filter().Sort().LimitFields().Paginate().Query()
}

// Query возвращает собранный запрос или первую ошибку.
func (f *Features) Query() (Query, error) {
	if f.err != nil {
		return Query{}, f.err
	}
	return f.query, nil
}

// Filter переводит параметры, кроме служебных, в условия фильтра.
// field[gte|gt|lte|lt]=v становится оператором сравнения, повторённый
// параметр превращается в $in.
func (f *Features) Filter() *Features {
	if f.err != nil {
		return f
	}

	keys := make([]string, 0, len(f.params))
	for k := range f.params {
		if !reserved[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	hidden := f.hidden()
	conditions := make(map[string]bson.M)
	for _, key := range keys {
		values := f.params[key]
		if len(values) == 0 {
			continue
		}
		m := keyRe.FindStringSubmatch(key)
		if m == nil {
			f.err = apperr.Newf(apperr.CodeValidation, "Invalid query parameter %s", key)
			return f
		}
		field, op := m[1], m[2]
		if hidden[field] {
			f.err = apperr.Newf(apperr.CodeValidation, "Invalid query parameter %s", key)
			return f
		}

		cond, ok := conditions[field]
		if !ok {
			cond = bson.M{}
			conditions[field] = cond
		}

		if op != "" {
			mongoOp, known := operators[op]
			if !known {
				f.err = apperr.Newf(apperr.CodeValidation, "Unsupported operator %s for %s", op, field)
				return f
			}
			v, err := f.cast(field, values[len(values)-1])
			if err != nil {
				f.err = err
				return f
			}
			cond[mongoOp] = v
			continue
		}

		if len(values) == 1 {
			v, err := f.cast(field, values[0])
			if err != nil {
				f.err = err
				return f
			}
			cond["$eq"] = v
			continue
		}
		in := make(bson.A, 0, len(values))
		for _, raw := range values {
			v, err := f.cast(field, raw)
			if err != nil {
				f.err = err
				return f
			}
			in = append(in, v)
		}
		cond["$in"] = in
	}

	requested := bson.M{}
	for field, cond := range conditions {
		if eq, ok := cond["$eq"]; ok && len(cond) == 1 {
			requested[field] = eq
			continue
		}
		requested[field] = cond
	}
	f.query.Filter = merge(f.base, requested)
	return f
}

// Sort разбирает список полей через запятую, "-" означает убывание.
// Для стабильной пагинации в конец добавляется _id.
func (f *Features) Sort() *Features {
	if f.err != nil {
		return f
	}
	raw := last(f.params["sort"])
	if raw == "" {
		raw = f.opts.DefaultSort
	}

	hidden := f.hidden()
	var sortDoc bson.D
	hasID := false
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dir := 1
		if strings.HasPrefix(part, "-") {
			dir = -1
			part = part[1:]
		}
		if !fieldRe.MatchString(part) || hidden[part] {
			f.err = apperr.Newf(apperr.CodeValidation, "Invalid sort field %s", part)
			return f
		}
		if part == "_id" {
			hasID = true
		}
		sortDoc = append(sortDoc, bson.E{Key: part, Value: dir})
	}
	if !hasID {
		sortDoc = append(sortDoc, bson.E{Key: "_id", Value: 1})
	}
	f.query.Sort = sortDoc
	return f
}

// LimitFields строит проекцию. Без параметра fields исключается служебное поле __v.
func (f *Features) LimitFields() *Features {
	if f.err != nil {
		return f
	}
	hidden := f.hidden()
	raw := last(f.params["fields"])
	projection := bson.M{}
	include, exclude := false, false
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value := 1
		if strings.HasPrefix(part, "-") {
			value = 0
			part = part[1:]
		}
		if !fieldRe.MatchString(part) {
			f.err = apperr.Newf(apperr.CodeValidation, "Invalid field %s", part)
			return f
		}
		if hidden[part] {
			continue
		}
		if part != "_id" {
			if value == 1 {
				include = true
			} else {
				exclude = true
			}
		}
		projection[part] = value
	}
	if include && exclude {
		f.err = apperr.Validation("Cannot mix included and excluded fields")
		return f
	}

	if !include {
		projection[versionField] = 0
		for h := range hidden {
			projection[h] = 0
		}
	}
	f.query.Projection = projection
	return f
}

// Paginate переводит page и limit в skip/limit. Некорректные значения заменяются значениями по умолчанию,
// limit ограничен MaxLimit, skip ограничен MaxSkip.
func (f *Features) Paginate() *Features {
	if f.err != nil {
		return f
	}
	page := positive(last(f.params["page"]), DefaultPage)
	limit := min(positive(last(f.params["limit"]), DefaultLimit), MaxLimit)

	f.query.Page = page
	f.query.Limit = limit
	if page-1 > MaxSkip/limit {
		f.query.Skip = MaxSkip
	} else {
		f.query.Skip = (page - 1) * limit
	}
	return f
}

func (f *Features) hidden() map[string]bool {
	hidden := make(map[string]bool, len(f.opts.Hidden))
	for _, h := range f.opts.Hidden {
		hidden[h] = true
	}
	return hidden
}

func (f *Features) cast(field, raw string) (any, error) {
	switch f.opts.Schema[field] {
	case Number:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperr.Cast(field, raw)
		}
		return v, nil
	case Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperr.Cast(field, raw)
		}
		return v, nil
	case Date:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if v, err := time.Parse(layout, raw); err == nil {
				return v, nil
			}
		}
		return nil, apperr.Cast(field, raw)
	case ObjectID:
		v, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, apperr.Cast(field, raw)
		}
		return v, nil
	default:
		return raw, nil
	}
}

func merge(base, requested bson.M) bson.M {
	if len(requested) == 0 {
		out := bson.M{}
		for k, v := range base {
			out[k] = v
		}
		return out
	}
	if len(base) == 0 {
		return requested
	}
	for k := range requested {
		if _, clash := base[k]; clash {
			return bson.M{"$and": bson.A{base, requested}}
		}
	}
	out := bson.M{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range requested {
		out[k] = v
	}
	return out
}

func last(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

func positive(raw string, def int64) int64 {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 {
		return def
	}
	return v
}
