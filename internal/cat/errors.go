package cat

import "github.com/adaptivecat/engine/internal/caterr"

func newInvalidConfig(format string, args ...any) *caterr.Error {
	return caterr.New(caterr.InvalidConfig, format, args...)
}

func newArgumentMismatch(format string, args ...any) *caterr.Error {
	return caterr.New(caterr.ArgumentMismatch, format, args...)
}
