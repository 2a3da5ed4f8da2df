// Package fopbridge provides the response envelopes and query parsing shared
// by the bridges.
package fopbridge

import (
	"encoding/json"
	"net/http"
)

// ============================================================================
// Standard Response Types
// ============================================================================

// CodeResponse provides a standard response with code and message
type CodeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewCodeResponse(code, message string) CodeResponse {
	return CodeResponse{Code: code, Message: message}
}

func (c CodeResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(c)
	return data, "application/json", err
}

// RecordResponse wraps a single record
type RecordResponse[T any] struct {
	Record T `json:"record"`
	status int
}

func NewRecordResponse[T any](record T) RecordResponse[T] {
	return RecordResponse[T]{Record: record}
}

// NewCreatedResponse wraps a newly created record and answers 201.
func NewCreatedResponse[T any](record T) RecordResponse[T] {
	return RecordResponse[T]{Record: record, status: http.StatusCreated}
}

func (r RecordResponse[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(r)
	return data, "application/json", err
}

func (r RecordResponse[T]) HTTPStatus() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// RecordsResponse wraps a complete, unpaged list.
type RecordsResponse[T any] struct {
	Records []T `json:"records"`
	Total   int `json:"total"`
}

func NewRecordsResponse[T any](records []T) RecordsResponse[T] {
	if records == nil {
		records = []T{}
	}
	return RecordsResponse[T]{Records: records, Total: len(records)}
}

func (r RecordsResponse[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(r)
	return data, "application/json", err
}
