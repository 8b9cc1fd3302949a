package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"clipmemo-sync-server/internal/domain"
)

type MemoVersionRepository interface {
	SaveVersion(memo *domain.Memo) error
	GetVersions(memoID string, limit int) ([]*domain.MemoVersion, error)
	GetVersion(memoID string, version int64) (*domain.MemoVersion, error)
	DeleteOldVersions(memoID string, keepLast int) error
}

type memoVersionRepo struct {
	baseURL string
	client  *http.Client
}

func NewMemoVersionRepository(baseURL string) MemoVersionRepository {
	return &memoVersionRepo{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *memoVersionRepo) SaveVersion(memo *domain.Memo) error {
	version := &domain.MemoVersion{
		ID:        fmt.Sprintf("version:%s:%d", memo.ID, memo.Version),
		MemoID:    memo.ID,
		Version:   memo.Version,
		Title:     memo.Title,
		Value:     memo.Value,
		Category:  memo.Category,
		DeviceID:  memo.LastEditDevice,
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(version)
	if err != nil {
		return err
	}

	resp, err := r.client.Post(r.baseURL, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to save version: status %d", resp.StatusCode)
	}

	return nil
}

func (r *memoVersionRepo) GetVersions(memoID string, limit int) ([]*domain.MemoVersion, error) {
	viewURL := fmt.Sprintf("%s/_design/versions/_view/by_memo?key=\"%s\"&limit=%d&descending=true",
		r.baseURL, memoID, limit)

	resp, err := r.client.Get(viewURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		Rows []struct {
			Value domain.MemoVersion `json:"value"`
		} `json:"rows"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	versions := make([]*domain.MemoVersion, len(result.Rows))
	for i, row := range result.Rows {
		v := row.Value
		versions[i] = &v
	}

	return versions, nil
}

func (r *memoVersionRepo) GetVersion(memoID string, version int64) (*domain.MemoVersion, error) {
	docID := fmt.Sprintf("version:%s:%d", memoID, version)
	url := fmt.Sprintf("%s/%s", r.baseURL, docID)

	resp, err := r.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("version not found")
	}

	var memoVersion domain.MemoVersion
	if err := json.NewDecoder(resp.Body).Decode(&memoVersion); err != nil {
		return nil, err
	}

	return &memoVersion, nil
}

func (r *memoVersionRepo) DeleteOldVersions(memoID string, keepLast int) error {
	versions, err := r.GetVersions(memoID, 100)
	if err != nil {
		return err
	}

	if len(versions) <= keepLast {
		return nil
	}

	toDelete := versions[keepLast:]
	for _, v := range toDelete {
		url := fmt.Sprintf("%s/%s", r.baseURL, v.ID)
		req, err := http.NewRequest(http.MethodDelete, url, nil)
		if err != nil {
			continue
		}

		r.client.Do(req)
	}

	return nil
}
