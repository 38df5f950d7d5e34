package log

import (
	"sync"

	"github.com/go-logr/logr"
	"k8s.io/klog/v2/klogr"

	"github.com/gocrane/imputebench/pkg/consts"
)

var (
	once   sync.Once
	logger logr.Logger
)

// Logger returns the process wide structured logger, backed by klog.
func Logger() logr.Logger {
	once.Do(func() {
		logger = klogr.New().WithName(consts.ImputeBenchName)
	})

	return logger
}
