package logging

type nopLogger struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...Field)         {}
func (nopLogger) Info(string, ...Field)          {}
func (nopLogger) Warn(string, ...Field)          {}
func (nopLogger) Error(string, ...Field)         {}
func (n nopLogger) WithError(error) Logger       { return n }
func (n nopLogger) WithField(string, any) Logger { return n }
func (n nopLogger) WithFields(...Field) Logger   { return n }
