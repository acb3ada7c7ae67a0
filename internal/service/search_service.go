package service

import (
	"encoding/json"
	"html"
	"log"
	"strings"

	"github.com/hirewire/hirewire/internal/model"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

type SearchService interface {
	IndexJob(job *model.Job) error
	IndexCandidate(candidate *model.Candidate) error
	DeleteJob(id string) error
	DeleteCandidate(id string) error
	SearchJobs(query string, limit int64) ([]map[string]interface{}, error)
	SearchCandidates(query string, limit int64) ([]map[string]interface{}, error)
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	jobSortable := []string{"created_at"}
	if _, err := s.client.Index("jobs").UpdateSortableAttributes(&jobSortable); err != nil {
		log.Printf("Failed to update jobs sortable attributes: %v", err)
	}

	jobFilterable := []string{"status"}
	jobFilterableInterface := make([]any, len(jobFilterable))
	for i, v := range jobFilterable {
		jobFilterableInterface[i] = v
	}
	if _, err := s.client.Index("jobs").UpdateFilterableAttributes(&jobFilterableInterface); err != nil {
		log.Printf("Failed to update jobs filterable attributes: %v", err)
	}

	candidateSortable := []string{"created_at"}
	if _, err := s.client.Index("candidates").UpdateSortableAttributes(&candidateSortable); err != nil {
		log.Printf("Failed to update candidates sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

type meiliJobDoc struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Details   string `json:"details"`
	Location  string `json:"location"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

type meiliCandidateDoc struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Tags      string `json:"tags"`
	CreatedAt int64  `json:"created_at"`
}

// cleanContentForIndex strips markup from rich-text job details so the index
// holds plain text.
func (s *searchService) cleanContentForIndex(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)

	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *searchService) IndexJob(job *model.Job) error {
	doc := meiliJobDoc{
		ID:        job.ID.String(),
		Title:     job.Title,
		Details:   s.cleanContentForIndex(job.Details),
		Location:  job.Location,
		Status:    job.Status,
		CreatedAt: job.CreatedAt.Unix(),
	}

	_, err := s.client.Index("jobs").AddDocuments([]meiliJobDoc{doc}, nil)
	return err
}

func (s *searchService) IndexCandidate(candidate *model.Candidate) error {
	doc := meiliCandidateDoc{
		ID:        candidate.ID.String(),
		FirstName: candidate.FirstName,
		LastName:  candidate.LastName,
		Email:     candidate.Email,
		Tags:      candidate.Tags,
		CreatedAt: candidate.CreatedAt.Unix(),
	}

	_, err := s.client.Index("candidates").AddDocuments([]meiliCandidateDoc{doc}, nil)
	return err
}

func (s *searchService) DeleteJob(id string) error {
	_, err := s.client.Index("jobs").DeleteDocument(id)
	return err
}

func (s *searchService) DeleteCandidate(id string) error {
	_, err := s.client.Index("candidates").DeleteDocument(id)
	return err
}

func (s *searchService) SearchJobs(query string, limit int64) ([]map[string]interface{}, error) {
	return s.search("jobs", query, limit)
}

func (s *searchService) SearchCandidates(query string, limit int64) ([]map[string]interface{}, error) {
	return s.search("candidates", query, limit)
}

func (s *searchService) search(index, query string, limit int64) ([]map[string]interface{}, error) {
	resp, err := s.client.Index(index).Search(query, &meilisearch.SearchRequest{
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}

	// Each hit arrives as raw JSON per field.
	hits := make([]map[string]interface{}, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		doc := make(map[string]interface{}, len(hit))
		for field, raw := range hit {
			var value interface{}
			if err := json.Unmarshal(raw, &value); err != nil {
				log.Printf("Failed to decode search hit field %q: %v", field, err)
				continue
			}
			doc[field] = value
		}
		hits = append(hits, doc)
	}
	return hits, nil
}
