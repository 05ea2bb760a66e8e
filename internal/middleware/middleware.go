package middleware

import (
	"net/http"
	"strconv"

	"github.com/svenkata/TabChatAPI/internal/handlers"
	"github.com/svenkata/TabChatAPI/internal/metrics"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logx.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	id           string
}

var GetHandler = Wrap(handlers.GetHandler)

var SaveTabHandler = Wrap(handlers.SaveTabHandler)
var UploadTabHandler = Wrap(handlers.UploadTabHandler)
var ListTabsHandler = Wrap(handlers.ListTabsHandler)
var DeleteTabHandler = Wrap(handlers.DeleteTabHandler)

var CreateChatHandler = Wrap(handlers.CreateChatHandler)
var ListChatsHandler = Wrap(handlers.ListChatsHandler)
var DeleteChatHandler = Wrap(handlers.DeleteChatHandler)
var GetMessagesHandler = Wrap(handlers.GetMessagesHandler)
var CreateMessageHandler = Wrap(handlers.CreateMessageHandler)
var EditMessageHandler = Wrap(handlers.EditMessageHandler)

var GetStatusHandler = Wrap(handlers.GetStatusHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logx.NewLogger("middleware")
	re.logger.Info("New request received")
	re = injectTrace(re)
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		return re //stop if auth fails
	}
	re = rateLimiter(re)
	return re
}
