package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferedLogger() (*logrus.Logger, *bytes.Buffer) {
	logger := SetupLogging()
	buf := &bytes.Buffer{}
	logger.Out = buf
	return logger, buf
}

func TestSetupLoggingWithLevel_FallsBackToInfo(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, SetupLoggingWithLevel("debug").Level)
	assert.Equal(t, logrus.InfoLevel, SetupLoggingWithLevel("loud").Level)
}

func TestLogData_ContextRoundTrip(t *testing.T) {
	assert.Nil(t, GetLogData(context.Background()))

	logData := NewLogData(SetupLogging())
	ctx := WithLogData(context.Background(), logData)
	assert.Same(t, logData, GetLogData(ctx))
}

func TestLogData_LogIncludesDataAndTimings(t *testing.T) {
	logger, buf := bufferedLogger()
	logData := NewLogData(logger)

	logData.AddData("billCount", 3)
	logData.AddTiming("listBillsMs")()
	logData.Log().Info("done")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, float64(3), line["billCount"])
	assert.Contains(t, line, "listBillsMs")
	assert.Equal(t, "info", line["loglevel"])
}

func TestLoggingWrapper_LogsError(t *testing.T) {
	logger, buf := bufferedLogger()
	handler := LoggingWrapper("Status", logger, func(w http.ResponseWriter, r *http.Request, logData *LogData) error {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("bad method")
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodPost, "/status", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, buf.String(), "Handler.Status.Error")
	assert.Contains(t, buf.String(), "bad method")
}
