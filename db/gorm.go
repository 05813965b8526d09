package db

import (
	"fmt"
	"time"

	"simpleink/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenGorm 在现有连接池之上建立 GORM 实例，两者共享同一个 *sql.DB，
// 连接上限与超时设置因此保持一致
func OpenGorm(p *Pool) (*gorm.DB, error) {
	dialector := mysql.New(mysql.Config{
		Conn:                      p.DB,
		SkipInitializeWithVersion: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newGormLogger(),
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GORM: %w", err)
	}
	return gdb, nil
}

// zapWriter routes GORM's printf-style log lines to the application logger.
type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	logger.L().WithOptions(zap.AddCallerSkip(3)).Sugar().Warnf(format, args...)
}

func newGormLogger() gormlogger.Interface {
	return gormlogger.New(zapWriter{}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
