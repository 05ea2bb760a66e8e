package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/svenkata/TabChatAPI/internal/adapter"
	"github.com/svenkata/TabChatAPI/internal/adapter/utils"
	"github.com/svenkata/TabChatAPI/internal/api"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/internal/rag/ingest"
)

// SaveTabHandler godoc
// @Summary      Save a tab and queue ingestion
// @Description  Upserts a tab by URL for the caller and queues a background chunk-and-embed run. Re-saving an existing URL re-ingests it.
// @Tags         Tabs
// @Accept       json
// @Produce      json
// @Param        request  body      api.SaveTabRequest    true  "Tab url, name and page text"
// @Success      202      {object}  api.InitTaskResponse  "Ingestion queued"
// @Failure      400      {object}  api.TaskResponse      "Invalid request data"
// @Router       /tabs [post]
func SaveTabHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	var requestData api.SaveTabRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logRH.Error("Couldn't close the Save Tab reader :", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.URL == "" || requestData.Content == "" {
		logRH.Warn("Bad Save Tab Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "url and content are required")
		return
	}

	userId := userFromRequest(r)
	saveTabAndQueue(w, r, tabModel.Tab{
		UserId:     userId,
		URL:        requestData.URL,
		Name:       requestData.Name,
		Content:    requestData.Content,
		FavIconURL: requestData.FavIconURL,
		Status:     tabModel.StatusPending,
	})
}

// UploadTabHandler godoc
// @Summary      Upload a document as a tab
// @Description  Receives a file via multipart/form-data, extracts its text and queues ingestion like a saved tab.
// @Tags         Tabs
// @Accept       multipart/form-data
// @Produce      json
// @Param        document_name  formData  string  true  "The display name of the document"
// @Param        document       formData  file    true  "The PDF, DOCX, ODT, RTF or text file to upload"
// @Success      202  {object}  api.InitTaskResponse  "Ingestion queued"
// @Failure      400  {object}  api.TaskResponse      "Missing fields, bad file or unsupported type"
// @Failure      500  {object}  api.TaskResponse      "Storage or write error"
// @Router       /tabs/upload [post]
func UploadTabHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	const maxUploadSize = 32 << 20 //32mb
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	docName := r.FormValue("document_name")
	if docName == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "document_name is required")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
	tempFilePath := filepath.Join(targetDir, filename)
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}

	if _, err = io.Copy(destinationFileWriter, fileReader); err != nil {
		destinationFileWriter.Close()
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
		return
	}
	destinationFileWriter.Close()

	text, err := ingest.ExtractFile(tempFilePath)
	if removeErr := os.Remove(tempFilePath); removeErr != nil {
		logRH.Error("Error removing temp file", "error", removeErr)
	}
	if err != nil {
		logRH.Error("Extraction failed", "file", filename, "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not extract text from file")
		return
	}

	userId := userFromRequest(r)
	saveTabAndQueue(w, r, tabModel.Tab{
		UserId:  userId,
		URL:     "upload://" + docName,
		Name:    docName,
		Content: text,
		Status:  tabModel.StatusTextExtracted,
	})
}

// ListTabsHandler godoc
// @Summary      List saved tabs
// @Tags         Tabs
// @Produce      json
// @Success      200  {array}  api.TabResponse
// @Router       /tabs [get]
func ListTabsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	tabs, err := handlerInstance.tabs.List(r.Context(), userFromRequest(r))
	if err != nil {
		logRH.Error("Error listing tabs", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Internal Server Error")
		return
	}

	response := make([]api.TabResponse, 0, len(tabs))
	for _, tab := range tabs {
		response = append(response, adapter.ToTabResponse(tab))
	}
	writeJsonResponse(w, http.StatusOK, response)
}

// DeleteTabHandler godoc
// @Summary      Delete a tab and its chunks
// @Tags         Tabs
// @Produce      json
// @Param        id   path  string  true  "Tab ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  api.TaskResponse  "Tab not found"
// @Router       /tabs/{id} [delete]
func DeleteTabHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	tabId := utils.GetChiURLParam(r, "id")
	tab, found := handlerInstance.tabs.Get(r.Context(), tabId)
	if !found || tab.UserId != userFromRequest(r) {
		WriteErrorResponse(w, http.StatusNotFound, tabId, "Tab not found")
		return
	}

	// chunks first so a half-finished delete never leaves orphaned vectors
	// pointing at a live tab
	if err := handlerInstance.index.DeleteByTab(r.Context(), tabId); err != nil {
		logRH.Error("Error deleting tab chunks", "tabId", tabId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, tabId, "Internal Server Error")
		return
	}
	if err := handlerInstance.tabs.Delete(r.Context(), tabId); err != nil {
		logRH.Error("Error deleting tab", "tabId", tabId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, tabId, "Internal Server Error")
		return
	}

	writeJsonResponse(w, http.StatusOK, map[string]string{"deleted": tabId})
}

func saveTabAndQueue(w http.ResponseWriter, r *http.Request, tab tabModel.Tab) {
	ctx := r.Context()

	// upsert by URL: re-saving the same page re-ingests it under the same id
	if existing, found := handlerInstance.tabs.GetByURL(ctx, tab.UserId, tab.URL); found {
		tab.Id = existing.Id
	} else {
		tab.Id = utils.GetNewUUID()
	}

	if err := handlerInstance.tabs.Save(ctx, tab); err != nil {
		logRH.Error("Error saving tab", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, tab.Id, "Internal Server Error")
		return
	}

	newTask := QueueIngestTask(tab.Id, traceFromRequest(r))
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitTaskResponse(newTask, ""))
}
