package controller

import (
	"context"
	"encoding/json"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// Capture records a system exception, logs it locally, and persists it
// when a store is wired. A nil error is a no-op.
func Capture(
	ctx context.Context,
	store ExceptionStore,
	service string,
	module string,
	method string,
	level string,
	err error,
	contextData map[string]interface{},
) {

	if err == nil {
		return
	}

	var ctxJSON string
	if contextData != nil {
		if b, e := json.Marshal(contextData); e == nil {
			ctxJSON = string(b)
		}
	}

	exc := &model.Exception{
		Service:   service,
		Module:    module,
		Method:    method,
		Message:   err.Error(),
		Level:     level,
		Context:   ctxJSON,
		CreatedAt: time.Now(),
	}

	logger.WithFields(map[string]interface{}{
		"service": service,
		"module":  module,
		"method":  method,
		"level":   level,
	}).WithError(err).Error("Exception captured")

	if store == nil {
		return
	}
	if dbErr := store.Create(ctx, exc); dbErr != nil {
		logger.WithError(dbErr).Error("Failed to persist exception")
	}
}
