package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"clipmemo-sync-server/internal/domain"
)

// ValueHistoryRepository persists the per-placeholder value history. It
// satisfies the template engine's ValueStore interface.
type ValueHistoryRepository interface {
	Get(placeholder string) ([]string, error)
	Set(placeholder string, values []string) error
}

type valueHistoryRepo struct {
	baseURL string
	client  *http.Client
}

func NewValueHistoryRepository(baseURL string) ValueHistoryRepository {
	return &valueHistoryRepo{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *valueHistoryRepo) docURL(placeholder string) string {
	docID := fmt.Sprintf("values:%s", placeholder)
	return fmt.Sprintf("%s/%s", r.baseURL, url.PathEscape(docID))
}

func (r *valueHistoryRepo) Get(placeholder string) ([]string, error) {
	resp, err := r.client.Get(r.docURL(placeholder))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to load value history: status %d", resp.StatusCode)
	}

	var history domain.PlaceholderHistory
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, err
	}

	return history.Values, nil
}

func (r *valueHistoryRepo) Set(placeholder string, values []string) error {
	doc := map[string]interface{}{
		"_id":         fmt.Sprintf("values:%s", placeholder),
		"placeholder": placeholder,
		"values":      values,
		"updated_at":  time.Now(),
	}

	resp, err := r.client.Get(r.docURL(placeholder))
	if err == nil {
		if resp.StatusCode == http.StatusOK {
			var existingDoc map[string]interface{}
			json.NewDecoder(resp.Body).Decode(&existingDoc)
			if rev, ok := existingDoc["_rev"].(string); ok {
				doc["_rev"] = rev
			}
		}
		resp.Body.Close()
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, r.docURL(placeholder), bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	putResp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer putResp.Body.Close()

	if putResp.StatusCode != http.StatusCreated && putResp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to save value history: status %d", putResp.StatusCode)
	}

	return nil
}
