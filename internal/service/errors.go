package service

import (
	"database/sql"
	"errors"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

// classify turns whatever came out of a transaction into the typed error returned to callers.
// Typed errors pass through, missing rows become notFound and everything else a storage failure.
func classify(err error, notFound *appErrors.Error, operation string) *appErrors.Error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, sql.ErrNoRows) && notFound != nil {
		return appErrors.Wrap(err, notFound, "")
	}
	return appErrors.Wrap(err, appErrors.ErrStorage, operation+" failed")
}

// logFailure logs storage failures at error level and domain rejections at info level.
func logFailure(logger *zap.Logger, operation string, appErr *appErrors.Error, fields ...zap.Field) {
	fields = append(fields, zap.String("operation", operation), zap.String("code", appErr.Code))
	if appErr.Kind == appErrors.KindStorageFailure {
		logger.Error("storage failure", append(fields, zap.Error(appErr.Unwrap()))...)
		return
	}
	logger.Info("request rejected", fields...)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
