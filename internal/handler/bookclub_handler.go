package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TravisChandler1/ewaede/internal/service"
	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
	"github.com/TravisChandler1/ewaede/pkg/response"
)

// BookClubHandler handles book club endpoints.
type BookClubHandler struct {
	service *service.BookClubService
}

// NewBookClubHandler creates a new book club handler.
func NewBookClubHandler(svc *service.BookClubService) *BookClubHandler {
	return &BookClubHandler{service: svc}
}

// Create godoc
// @Summary Create book club
// @Description Create a book club. The creator becomes its first member.
// @Tags BookClubs
// @Accept json
// @Produce json
// @Param payload body service.CreateBookClubRequest true "Club payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /book-clubs [post]
func (h *BookClubHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateBookClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid book club payload"))
		return
	}

	club, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, club)
}

// List godoc
// @Summary List book clubs
// @Description List active clubs, or only those the caller joined with joined=true
// @Tags BookClubs
// @Produce json
// @Param joined query bool false "Only joined clubs"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /book-clubs [get]
func (h *BookClubHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	joined, _ := strconv.ParseBool(c.DefaultQuery("joined", "false"))
	clubs, err := h.service.List(c.Request.Context(), claims.UserID, joined)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, clubs, nil)
}

// Get godoc
// @Summary Get book club
// @Description Get club detail including membership state for the viewer
// @Tags BookClubs
// @Produce json
// @Param id path string true "Club ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /book-clubs/{id} [get]
func (h *BookClubHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	club, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, club, nil)
}

// Join godoc
// @Summary Join book club
// @Description Join an active club. Fails with 409 when full or already joined.
// @Tags BookClubs
// @Produce json
// @Param id path string true "Club ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /book-clubs/{id}/join [post]
func (h *BookClubHandler) Join(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	membership, err := h.service.Join(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, membership)
}

// Leave godoc
// @Summary Leave book club
// @Description Leave a club the caller is a member of
// @Tags BookClubs
// @Produce json
// @Param id path string true "Club ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /book-clubs/{id}/leave [post]
func (h *BookClubHandler) Leave(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Leave(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// UpdateProgress godoc
// @Summary Update reading progress
// @Description Set the caller's current chapter in a club
// @Tags BookClubs
// @Accept json
// @Produce json
// @Param id path string true "Club ID"
// @Param payload body service.UpdateProgressRequest true "Progress payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /book-clubs/{id}/progress [put]
func (h *BookClubHandler) UpdateProgress(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid progress payload"))
		return
	}

	if err := h.service.UpdateProgress(c.Request.Context(), c.Param("id"), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Members godoc
// @Summary List club members
// @Description List members and their reading progress
// @Tags BookClubs
// @Produce json
// @Param id path string true "Club ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /book-clubs/{id}/members [get]
func (h *BookClubHandler) Members(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	members, err := h.service.Members(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, members, nil)
}

// Discussions godoc
// @Summary List club discussions
// @Description List recent discussion posts in a club the caller belongs to
// @Tags BookClubs
// @Produce json
// @Param id path string true "Club ID"
// @Param limit query int false "Max posts"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /book-clubs/{id}/discussions [get]
func (h *BookClubHandler) Discussions(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	discussions, err := h.service.Discussions(c.Request.Context(), c.Param("id"), claims.UserID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, discussions, nil)
}

// PostDiscussion godoc
// @Summary Post club discussion
// @Description Post a discussion message, optionally tied to a chapter
// @Tags BookClubs
// @Accept json
// @Produce json
// @Param id path string true "Club ID"
// @Param payload body service.PostClubDiscussionRequest true "Discussion payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /book-clubs/{id}/discussions [post]
func (h *BookClubHandler) PostDiscussion(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.PostClubDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid discussion payload"))
		return
	}

	discussion, err := h.service.PostDiscussion(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, discussion)
}
