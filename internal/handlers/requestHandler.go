package handlers

import (
	"net/http"

	"github.com/svenkata/TabChatAPI/internal/adapter"
	"github.com/svenkata/TabChatAPI/internal/adapter/utils"
)

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// GetStatusHandler godoc
// @Summary      Get task status
// @Description  Retrieves the current status of a background task using its ID.
// @Tags         Task Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  api.TaskResponse  "The current status of the task"
// @Failure      404  {object}  api.TaskResponse  "Task not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	idString := utils.GetChiURLParam(r, "id")
	logRH.Debug("Get Status Request:", "URL path", r.URL.Path)

	if idString == "" {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Task not found")
		return
	}
	result, isFound := GetTaskStatus(idString, traceFromRequest(r))
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Task not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToTaskResponse(result))
}
