package httpclient

import (
	"fmt"
	"regexp"
	"strings"
)

// Logger defines the logging surface the transport relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

// secretParams matches credential query parameters resty echoes in its messages.
var secretParams = regexp.MustCompile(`((?:^|[?&\s"])(?:token|api_key|apikey)=)[^&\s"]*`)

func redact(s string) string {
	return secretParams.ReplaceAllString(s, "${1}***")
}

// restyLogger adapts Logger to resty.Logger so retry and transport warnings
// end up in the structured log with credentials removed.
type restyLogger struct {
	log Logger
}

func newRestyLogger(log Logger) *restyLogger {
	if log == nil {
		log = noopLogger{}
	}
	return &restyLogger{log: log}
}

func (r *restyLogger) Errorf(format string, v ...interface{}) {
	r.log.ErrorObj("http transport error", "resty", r.detail(format, v))
}

func (r *restyLogger) Warnf(format string, v ...interface{}) {
	r.log.WarnObj("http transport warning", "resty", r.detail(format, v))
}

func (r *restyLogger) Debugf(format string, v ...interface{}) {
	r.log.DebugObj("http transport debug", "resty", r.detail(format, v))
}

func (r *restyLogger) detail(format string, v []interface{}) string {
	return redact(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
