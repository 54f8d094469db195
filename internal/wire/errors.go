package wire

import "github.com/dittonosql/go-sdk/pkg/nosqlerr"

func protoErrf(format string, args ...any) *nosqlerr.Error {
	return nosqlerr.BadProtocol(format, args...)
}
