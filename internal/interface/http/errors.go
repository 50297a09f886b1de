package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rentivu/internal/application"
	"github.com/oksasatya/rentivu/internal/domain/repository"
	"github.com/oksasatya/rentivu/pkg/helpers"
	"github.com/oksasatya/rentivu/pkg/response"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{application.ErrUserNotFound, http.StatusNotFound},
	{application.ErrInvalidCredentials, http.StatusUnauthorized},
	{application.ErrEmailAlreadyRegistered, http.StatusConflict},
	{application.ErrRentalNotFound, http.StatusNotFound},
	{application.ErrSlotTaken, http.StatusConflict},
	{application.ErrDatetimeInPast, http.StatusUnprocessableEntity},
	{application.ErrInvalidDatetime, http.StatusUnprocessableEntity},
	{repository.ErrTxConflict, http.StatusServiceUnavailable},
}

// writeError maps domain errors to their status; anything else is logged and hidden behind a 500.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			response.Error[any](c, e.status, e.err.Error(), nil)
			return
		}
	}
	helpers.LogError(logger, "request failed", err, logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.FullPath(),
	})
	response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
}
