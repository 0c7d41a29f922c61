package dto

import (
	"time"

	"github.com/raknago/parking-backend/internal/domain"
)

// DocumentView is the client representation of a stored document.
// Timestamps inside fields render as RFC3339 strings.
type DocumentView struct {
	ID         string        `json:"id"`
	Collection string        `json:"collection"`
	Fields     domain.Fields `json:"fields"`
	CreateTime *time.Time    `json:"createTime,omitempty"`
	UpdateTime *time.Time    `json:"updateTime,omitempty"`
}

type DocumentList struct {
	Documents []DocumentView `json:"documents"`
}

func ToDocumentView(d domain.Document) DocumentView {
	v := DocumentView{ID: d.ID, Collection: d.Collection, Fields: d.Fields}
	if v.Fields == nil {
		v.Fields = domain.Fields{}
	}
	if !d.CreateTime.IsZero() {
		ct := d.CreateTime
		v.CreateTime = &ct
	}
	if !d.UpdateTime.IsZero() {
		ut := d.UpdateTime
		v.UpdateTime = &ut
	}
	return v
}

func ToDocumentList(docs []domain.Document) DocumentList {
	out := DocumentList{Documents: make([]DocumentView, 0, len(docs))}
	for _, d := range docs {
		out.Documents = append(out.Documents, ToDocumentView(d))
	}
	return out
}
