package logger

import (
	"github.com/sirupsen/logrus"
)

// Log 是全局的结构化日志实例。
var Log = logrus.New()

// Init 根据配置设置日志级别与输出格式。
// release 模式输出 JSON，其他模式输出带时间戳的文本。
func Init(level, ginMode string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if ginMode == "release" {
		Log.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
