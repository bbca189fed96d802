package server

import (
	"net/http"
	"regexp"
	"strings"

	"modelpicker/internal/core"
	"modelpicker/internal/registry"
	"modelpicker/internal/util"

	"github.com/gin-gonic/gin"
)

var versionSegment = regexp.MustCompile(`^v[0-9]+$`)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// respondWithError writes the uniform error envelope. Error responses are
// never cacheable.
func respondWithError(c *gin.Context, status int, code, message string) {
	c.Header(core.HeaderCacheControl, core.CacheControlNoStore)
	writeJSON(c, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// respondWithRegistryError maps resolver failures onto HTTP statuses.
func (s *Server) respondWithRegistryError(c *gin.Context, err error) {
	switch registry.Classify(err) {
	case registry.KindSnapshotNotFound:
		respondWithError(c, http.StatusNotFound, core.ErrorCodeSnapshotNotFound, err.Error())
	case registry.KindCategoryNotSupported:
		respondWithError(c, http.StatusBadRequest, core.ErrorCodeCategoryNotSupported, err.Error())
	default:
		s.config.Logger.Error("Selection lookup failed (request %s): %v", c.GetString(core.GinContextRequestID), err)
		respondWithError(c, http.StatusInternalServerError, core.ErrorCodeUnknown, core.ErrorMessageUnexpected)
	}
}

// writeJSON encodes with sonic and writes the bytes.
func writeJSON(c *gin.Context, status int, v any) {
	data, err := util.MarshalJSON(v)
	if err != nil {
		c.Header(core.HeaderCacheControl, core.CacheControlNoStore)
		c.Data(http.StatusInternalServerError, core.ContentTypeJSON,
			[]byte(`{"error":{"code":"`+core.ErrorCodeUnknown+`","message":"`+core.ErrorMessageUnexpected+`"}}`))
		return
	}
	c.Data(status, core.ContentTypeJSON, data)
}

// selectionCacheControl picks the CDN policy for a successful lookup:
// "latest" moves when a snapshot is added, a pinned date never changes.
func selectionCacheControl(requested string) string {
	if requested == core.LatestSnapshotAlias {
		return core.CacheControlLatest
	}
	return core.CacheControlPinned
}

// unsupportedVersion returns the version segment of an /api/<vN>/... path
// when that version is not served.
func unsupportedVersion(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/api/")
	if !ok {
		return "", false
	}
	segment, _, _ := strings.Cut(rest, "/")
	if !versionSegment.MatchString(segment) {
		return "", false
	}
	for _, v := range registry.SupportedVersions() {
		if v == segment {
			return "", false
		}
	}
	return segment, true
}
