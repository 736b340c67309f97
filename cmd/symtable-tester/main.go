// Command symtable-tester is the smallest possible consumer of the table:
// it creates one, binds a single key and frees it again.
package main

import (
	"go.uber.org/zap"

	"github.com/lojhan/symtable/internal/symtable"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	jeter := 3
	tbl := symtable.New[*int](symtable.WithLogger(logger))
	if !tbl.Put("Jeter", &jeter) {
		logger.Fatal("put refused", zap.String("key", "Jeter"))
	}
	logger.Info("bound key", zap.String("key", "Jeter"), zap.Int("length", tbl.Len()))

	tbl.Free()
	logger.Info("table freed", zap.Int("value", jeter))
}
