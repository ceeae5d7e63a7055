package middlewarectx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// Sanitize чистит входные данные от операторов MongoDB и HTML.
//
// Из JSON-тела и строки запроса удаляются ключи, которые начинаются с "$" или
// содержат ".", а в строковых значениях экранируются "<" и ">". Тело, которое
// не разбирается как JSON, остаётся как есть: его отклонит обработчик.
func Sanitize(errs ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery != "" {
				r.URL.RawQuery = sanitizeQuery(r.URL.Query()).Encode()
			}

			if r.Body != nil && isJSON(r) {
				raw, err := io.ReadAll(r.Body)
				if err != nil {
					errs.Write(w, r, err)
					return
				}
				_ = r.Body.Close()
				raw = sanitizeBody(raw)
				r.Body = io.NopCloser(bytes.NewReader(raw))
				r.ContentLength = int64(len(raw))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return r.ContentLength != 0
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}

func sanitizeBody(raw []byte) []byte {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return raw
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return raw
	}
	clean, err := json.Marshal(sanitizeValue(v))
	if err != nil {
		return raw
	}
	return clean
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			if forbiddenKey(k) {
				delete(val, k)
				continue
			}
			val[k] = sanitizeValue(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = sanitizeValue(item)
		}
		return val
	case string:
		return escapeHTML(val)
	default:
		return val
	}
}

func sanitizeQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vals := range q {
		if forbiddenKey(k) {
			continue
		}
		for _, v := range vals {
			out.Add(k, escapeHTML(v))
		}
	}
	return out
}

func forbiddenKey(k string) bool {
	return strings.HasPrefix(k, "$") || strings.Contains(k, ".")
}

var htmlReplacer = strings.NewReplacer("<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

// ParameterPollution оставляет последнее значение повторяющегося параметра
// запроса. Параметры из whitelist сохраняют все значения.
func ParameterPollution(whitelist ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(whitelist))
	for _, name := range whitelist {
		allowed[name] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			changed := false
			for k, vals := range q {
				if len(vals) < 2 {
					continue
				}
				if _, ok := allowed[baseParam(k)]; ok {
					continue
				}
				q[k] = vals[len(vals)-1:]
				changed = true
			}
			if changed {
				r.URL.RawQuery = q.Encode()
			}
			next.ServeHTTP(w, r)
		})
	}
}

// baseParam имя параметра без оператора: "price[gte]" -> "price".
func baseParam(k string) string {
	if i := strings.IndexByte(k, '['); i > 0 {
		return k[:i]
	}
	return k
}
