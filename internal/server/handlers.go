package server

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phrasefit/phrasefit/internal/extract"
	"github.com/phrasefit/phrasefit/internal/match"
	"github.com/phrasefit/phrasefit/internal/openrouter"
)

type createPostingRequest struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	Body    string `json:"body"`
	// HTML, when set, is stripped to plain text and used as the body.
	HTML string `json:"html"`
}

func (s *Server) createPosting(c *gin.Context) {
	var req createPostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
		return
	}
	body := req.Body
	if strings.TrimSpace(req.HTML) != "" {
		text, err := extract.FromString(req.HTML)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
			return
		}
		body = text
	}
	posting, err := s.service.CreatePosting(match.JobPosting{
		Title:   req.Title,
		Company: req.Company,
		Body:    body,
	})
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
		return
	}
	c.JSON(http.StatusCreated, posting)
}

func (s *Server) listPostings(c *gin.Context) {
	postings, err := s.service.Store().ListPostings()
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"postings": postings})
}

func (s *Server) getPosting(c *gin.Context) {
	posting, err := s.service.Store().GetPosting(c.Param("id"))
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, posting)
}

func (s *Server) deletePosting(c *gin.Context) {
	if err := s.service.DeletePosting(c.Param("id")); err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) postingSummary(c *gin.Context) {
	summary, err := s.service.Store().Summarize(c.Param("id"))
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) extractKeywords(c *gin.Context) {
	keywords, err := s.service.ExtractKeywords(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"keywords": keywords})
}

func (s *Server) listKeywords(c *gin.Context) {
	keywords, err := s.service.Store().ListKeywords(c.Param("id"))
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"keywords": keywords})
}

type setMatchedRequest struct {
	Matched *bool `json:"matched"`
}

func (s *Server) setMatched(c *gin.Context) {
	var req setMatchedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Matched == nil {
		writeError(c, http.StatusBadRequest, "invalid_request_error", "body must contain a boolean 'matched' field")
		return
	}
	if err := s.service.SetMatched(c.Param("id"), *req.Matched); err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteKeyword(c *gin.Context) {
	if err := s.service.DeleteKeyword(c.Param("id")); err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type draftRequest struct {
	Resume string `json:"resume"`
}

func (s *Server) draftPhrases(c *gin.Context) {
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
		return
	}
	if strings.TrimSpace(req.Resume) == "" {
		writeError(c, http.StatusBadRequest, "invalid_request_error", "resume text is required")
		return
	}
	phrases, err := s.service.DraftPhrases(c.Request.Context(), c.Param("id"), req.Resume)
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"phrases": phrases})
}

func (s *Server) listPhrases(c *gin.Context) {
	phrases, err := s.service.Store().ListPhrases(c.Param("id"))
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"phrases": phrases})
}

func (s *Server) adoptPhrase(c *gin.Context) {
	if err := s.service.AdoptPhrase(c.Param("id")); err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deletePhrase(c *gin.Context) {
	if err := s.service.DeletePhrase(c.Param("id")); err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listModels(c *gin.Context) {
	catalog, err := s.llm.ListModels(c.Request.Context())
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, catalog)
}

type imageRequest struct {
	Prompt   string `json:"prompt"`
	Negative string `json:"negative"`
	Size     string `json:"size"`
	Model    string `json:"model"`
}

type imageResponse struct {
	Data  string `json:"data"`
	MIME  string `json:"mime"`
	Model string `json:"model"`
}

func (s *Server) generateImage(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(c, http.StatusBadRequest, "invalid_request_error", "prompt is required")
		return
	}
	res, err := s.llm.GenerateImage(c.Request.Context(), openrouter.ImageRequest{
		Prompt:   req.Prompt,
		Negative: req.Negative,
		Size:     req.Size,
		Model:    req.Model,
	})
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, imageResponse{
		Data:  base64.StdEncoding.EncodeToString(res.Data),
		MIME:  res.MIME,
		Model: res.Model,
	})
}
