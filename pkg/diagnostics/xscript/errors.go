package xscript

import "errors"

var (
	// ErrNilGenerator 生成器为 nil。
	ErrNilGenerator = errors.New("xscript: nil generator")

	// ErrNilPredicate 门控谓词为 nil。
	ErrNilPredicate = errors.New("xscript: nil predicate")

	// ErrGeneratorPanic 生成器 panic。
	ErrGeneratorPanic = errors.New("xscript: generator panicked")

	// ErrCircuitOpen 熔断器处于打开状态，生成器未被调用。
	ErrCircuitOpen = errors.New("xscript: circuit open")
)
