package controllers

import (
	"net/http"
	"strings"

	"github.com/ichaoui56/e-commerce-backoffice/api/validators"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/pagination"
)

const maxSearchLength = 100

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func searchTerm(r *http.Request) string {
	return validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLength)
}
