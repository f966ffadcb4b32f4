package client

import "go.uber.org/zap"

// restyLogger adapts zap to resty.Logger
type restyLogger struct {
	sugar *zap.SugaredLogger
}

func newRestyLogger(log *zap.Logger) *restyLogger {
	if log == nil {
		log = zap.NewNop()
	}
	return &restyLogger{sugar: log.Named("http").Sugar()}
}

func (l *restyLogger) Errorf(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

func (l *restyLogger) Warnf(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

func (l *restyLogger) Debugf(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}
