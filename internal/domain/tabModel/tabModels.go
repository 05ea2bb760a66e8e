package tabModel

import (
	"context"
	"time"
)

type TabStatus string

const (
	StatusPending       TabStatus = "pending"
	StatusProcessing    TabStatus = "processing"
	StatusTextExtracted TabStatus = "text_extracted"
	StatusChunking      TabStatus = "chunking"
	StatusEmbedding     TabStatus = "embedding"
	StatusProcessed     TabStatus = "processed"
	StatusFailed        TabStatus = "failed"
)

// Tab is a saved web page: the unit of ingested source text.
// Status moves pending -> processing -> text_extracted -> chunking ->
// embedding -> processed; failed is reachable from any state and carries
// a human-readable Error.
type Tab struct {
	Id             string    `json:"id"`
	UserId         string    `json:"user_id"`
	URL            string    `json:"url"`
	Name           string    `json:"name,omitempty"`
	Content        string    `json:"content,omitempty"`
	Status         TabStatus `json:"status"`
	Error          string    `json:"error,omitempty"`
	FavIconURL     string    `json:"fav_icon_url,omitempty"`
	LastIngestedAt time.Time `json:"last_ingested_at,omitempty"`
}

type ChunkCounts struct {
	Words      int `json:"words"`
	Characters int `json:"characters"`
	Tokens     int `json:"tokens,omitempty"`
}

// ChunkPosition is a start/end word-index range into the source word
// sequence. End is inclusive.
type ChunkPosition struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Chunk is one overlapping word window of a tab's text. Chunks are written
// only by the ingestion pipeline and removed together when their tab is
// re-ingested or deleted; they are never patched in place.
type Chunk struct {
	Id        string            `json:"chunk_id"`
	TabId     string            `json:"tab_id"`
	Text      string            `json:"text"`
	Counts    ChunkCounts       `json:"counts"`
	Position  ChunkPosition     `json:"position"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Embedding []float32         `json:"embedding,omitempty"`
}

type TabStore interface {
	Get(ctx context.Context, tabId string) (Tab, bool)
	GetByURL(ctx context.Context, userId string, url string) (Tab, bool)
	Save(ctx context.Context, tab Tab) error
	List(ctx context.Context, userId string) ([]Tab, error)
	Delete(ctx context.Context, tabId string) error
	UpdateStatus(ctx context.Context, tabId string, status TabStatus, errMsg string) error
}
