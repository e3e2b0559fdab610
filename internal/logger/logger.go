package logger

import (
	"log"

	"go.uber.org/zap"
)

// L is the process-wide logger. Init must run before anything logs through it.
var L *zap.Logger

func Init(debug bool) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	L = l
}

func Sync() {
	if L != nil {
		_ = L.Sync()
	}
}
