package controller

import (
	"errors"
	"net/http"

	"quiz_session_backend/internal/service"
	"quiz_session_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	Service *service.QuizSessionService
}

func NewSessionController(svc *service.QuizSessionService) *SessionController {
	return &SessionController{Service: svc}
}

// respondSessionError translates the engine's typed errors into HTTP
// responses. A fired deadline is a 409 carrying the auto-created
// submission, so clients can render the score without another round trip.
func respondSessionError(ctx *gin.Context, err error) {
	var expired *util.SessionExpiredError
	switch {
	case errors.As(err, &expired):
		util.ErrorWithData(ctx, http.StatusConflict, expired.Error(), gin.H{
			"autoSubmitted": true,
			"submission":    expired.Submission,
		})
	case errors.Is(err, util.ErrQuizNotFound),
		errors.Is(err, util.ErrInvalidSession),
		errors.Is(err, util.ErrSubmissionNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrQuizNotAvailable):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrAlreadyCompleted):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrEmptyQuiz),
		errors.Is(err, util.ErrInvalidQuestion),
		errors.Is(err, util.ErrAtFirstQuestion),
		errors.Is(err, util.ErrAtLastQuestion),
		errors.Is(err, util.ErrNoTimeLimit):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary Start or resume a quiz attempt
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Success 201 {object} util.Response{data=service.SessionSnapshot}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/quizzes/{id}/sessions [post]
func (c *SessionController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID := util.MustParseUint(ctx.Param("id"))
	if quizID == 0 {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	snap, err := c.Service.StartSession(quizID, user.UserID)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Created(ctx, snap)
}

// @Summary Read the current state of an attempt
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param token path string true "Session token"
// @Success 200 {object} util.Response{data=service.SessionSnapshot}
// @Failure 404 {object} util.Response
// @Router /api/sessions/{token} [get]
func (c *SessionController) Get(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	snap, err := c.Service.GetSession(ctx.Param("token"), user.UserID)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

type SubmitAnswerRequest struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
}

// @Summary Save an answer for one question
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param token path string true "Session token"
// @Param body body SubmitAnswerRequest true "Answer payload"
// @Success 200 {object} util.Response{data=service.SessionSnapshot}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/sessions/{token}/answers [post]
func (c *SessionController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	snap, err := c.Service.SubmitAnswer(ctx.Param("token"), user.UserID, req.QuestionID, req.Answer)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// @Summary Move to the next question
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param token path string true "Session token"
// @Success 200 {object} util.Response{data=service.SessionSnapshot}
// @Failure 400 {object} util.Response
// @Router /api/sessions/{token}/next [post]
func (c *SessionController) Next(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	snap, err := c.Service.NextQuestion(ctx.Param("token"), user.UserID)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// @Summary Move to the previous question
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param token path string true "Session token"
// @Success 200 {object} util.Response{data=service.SessionSnapshot}
// @Failure 400 {object} util.Response
// @Router /api/sessions/{token}/previous [post]
func (c *SessionController) Previous(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	snap, err := c.Service.PreviousQuestion(ctx.Param("token"), user.UserID)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// @Summary Finish the attempt and get the score
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param token path string true "Session token"
// @Success 200 {object} util.Response{data=service.SessionResult}
// @Failure 409 {object} util.Response
// @Router /api/sessions/{token}/complete [post]
func (c *SessionController) Complete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.CompleteSession(ctx.Param("token"), user.UserID)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Abandon the attempt without scoring
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param token path string true "Session token"
// @Success 200 {object} util.Response{data=service.SessionSnapshot}
// @Failure 409 {object} util.Response
// @Router /api/sessions/{token}/abandon [post]
func (c *SessionController) Abandon(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	snap, err := c.Service.AbandonSession(ctx.Param("token"), user.UserID)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

type ExtendRequest struct {
	AdditionalMinutes int `json:"additionalMinutes" binding:"required,gt=0"`
}

// @Summary Extend the deadline of a timed attempt
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param token path string true "Session token"
// @Param body body ExtendRequest true "Extension payload"
// @Success 200 {object} util.Response{data=service.SessionSnapshot}
// @Failure 400 {object} util.Response
// @Router /api/sessions/{token}/extend [post]
func (c *SessionController) Extend(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ExtendRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	snap, err := c.Service.ExtendSession(ctx.Param("token"), user.UserID, req.AdditionalMinutes)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// @Summary Read the scored result of a finished attempt
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param token path string true "Session token"
// @Success 200 {object} util.Response{data=service.SessionResult}
// @Failure 404 {object} util.Response
// @Router /api/sessions/{token}/results [get]
func (c *SessionController) Results(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.GetResults(ctx.Param("token"), user.UserID)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary List the caller's attempt history
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/sessions [get]
func (c *SessionController) ListMine(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	sessions, err := c.Service.ListUserSessions(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// @Summary List the caller's scored submissions
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/submissions [get]
func (c *SessionController) ListMySubmissions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	subs, err := c.Service.ListUserSubmissions(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

// @Summary Finalize all timed-out sessions
// @Description Batch pass over in-progress sessions whose deadline passed;
// @Description returns a per-session outcome list.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/sessions/sweep [post]
func (c *SessionController) Sweep(ctx *gin.Context) {
	outcomes, err := c.Service.SweepExpired()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"swept":    len(outcomes),
		"outcomes": outcomes,
	})
}
