// Package smtp подключается к почтовому серверу для отправки писем.
package smtp

import "io"

// Client команды SMTP-сессии, нужные для отправки одного письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}
