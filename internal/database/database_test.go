package database

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestGormLevel(t *testing.T) {
	assert.Equal(t, logger.Info, gormLevel(log.TraceLevel))
	assert.Equal(t, logger.Info, gormLevel(log.DebugLevel))
	assert.Equal(t, logger.Warn, gormLevel(log.InfoLevel))
	assert.Equal(t, logger.Warn, gormLevel(log.WarnLevel))
	assert.Equal(t, logger.Error, gormLevel(log.ErrorLevel))
}
