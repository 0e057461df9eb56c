package search

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/savramidis/news-ingestion-api/internal/response"
)

const maxQueryLength = 500

// Handler holds HTTP handlers for the search endpoints.
type Handler struct {
	agent  *AgentService
	news   *NewsAPIService
	kaggle *KaggleService
}

// NewHandler creates a new search Handler.
func NewHandler(agent *AgentService, news *NewsAPIService, kaggle *KaggleService) *Handler {
	return &Handler{agent: agent, news: news, kaggle: kaggle}
}

// Docs redirects to the interactive API documentation.
func (h *Handler) Docs(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/swagger/index.html", http.StatusTemporaryRedirect)
}

// BingSearch godoc
//
//	@Summary		Grounded web search
//	@Description	Runs the query through the grounding agent, stores the text of every cited article in blob storage, and returns the agent's answer with its citations.
//	@Tags			search
//	@Produce		json
//	@Param			query	query		string	true	"Search query"
//	@Success		200		{object}	response.Envelope{data=agent.Result}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/bingsearch [get]
func (h *Handler) BingSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		response.BadRequest(w, "query parameter is required")
		return
	}

	result, err := h.agent.Search(r.Context(), query)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}
	response.OK(w, result)
}

// NewsSearch godoc
//
//	@Summary		News aggregation search
//	@Description	Queries the news-aggregation API, stores the text of every result article in blob storage, and returns the provider's result envelope unchanged.
//	@Tags			search
//	@Produce		json
//	@Param			query			query		string	true	"Search query (max 500 characters)"
//	@Param			searchIn		query		string	false	"Fields to search: title, description, content (comma-separated)"
//	@Param			sources			query		string	false	"Comma-separated source identifiers"
//	@Param			domains			query		string	false	"Comma-separated domains to include"
//	@Param			excludeDomains	query		string	false	"Comma-separated domains to exclude"
//	@Param			from			query		string	false	"Oldest article date or datetime (ISO 8601)"
//	@Param			to				query		string	false	"Newest article date or datetime (ISO 8601)"
//	@Param			language		query		string	false	"2-letter language code"	default(en)
//	@Param			sortBy			query		string	false	"relevancy, popularity or publishedAt"	default(publishedAt)
//	@Param			pageSize		query		int		false	"Results per page (1-10)"	default(10)
//	@Param			page			query		int		false	"Page number"	default(1)
//	@Success		200				{object}	response.Envelope{data=Everything}
//	@Failure		400				{object}	response.Envelope
//	@Failure		500				{object}	response.Envelope
//	@Router			/newsapi [get]
func (h *Handler) NewsSearch(w http.ResponseWriter, r *http.Request) {
	params, err := parseEverythingParams(r.URL.Query())
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	news, err := h.news.Search(r.Context(), params)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}
	response.OK(w, news)
}

// Kaggle godoc
//
//	@Summary		Ingest the local Kaggle dataset
//	@Description	Reads the local Kaggle news dataset, stores the text of every linked article in blob storage, and returns the processed articles.
//	@Tags			search
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]article.Data}
//	@Failure		500	{object}	response.Envelope
//	@Router			/kaggle [post]
func (h *Handler) Kaggle(w http.ResponseWriter, r *http.Request) {
	articles, err := h.kaggle.Ingest(r.Context())
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}
	response.OK(w, articles)
}

// parseEverythingParams validates the everything endpoint's query string and
// applies its defaults.
func parseEverythingParams(q url.Values) (EverythingParams, error) {
	params := EverythingParams{
		Query:          strings.TrimSpace(q.Get("query")),
		SearchIn:       q.Get("searchIn"),
		Sources:        q.Get("sources"),
		Domains:        q.Get("domains"),
		ExcludeDomains: q.Get("excludeDomains"),
		From:           q.Get("from"),
		To:             q.Get("to"),
		Language:       q.Get("language"),
		SortBy:         q.Get("sortBy"),
	}

	if params.Query == "" {
		return params, fmt.Errorf("query parameter is required")
	}
	if utf8.RuneCountInString(params.Query) > maxQueryLength {
		return params, fmt.Errorf("query must be at most %d characters", maxQueryLength)
	}

	if params.Language == "" {
		params.Language = "en"
	}
	if len(params.Language) != 2 {
		return params, fmt.Errorf("language must be a 2-letter code")
	}

	switch params.SortBy {
	case "":
		params.SortBy = "publishedAt"
	case "relevancy", "popularity", "publishedAt":
	default:
		return params, fmt.Errorf("sortBy must be one of relevancy, popularity, publishedAt")
	}

	params.PageSize = 10
	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("pageSize must be an integer")
		}
		if n < 1 || n > 10 {
			return params, fmt.Errorf("pageSize must be between 1 and 10")
		}
		params.PageSize = n
	}

	params.Page = 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("page must be an integer")
		}
		if n < 1 {
			return params, fmt.Errorf("page must be at least 1")
		}
		params.Page = n
	}

	return params, nil
}
