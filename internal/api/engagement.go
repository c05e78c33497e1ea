package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aimastery/questd/internal/app/engagement"
	"github.com/aimastery/questd/internal/app/evaluation"
	"github.com/aimastery/questd/internal/domain"
)

const defaultLeaderboardLimit = 10

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Profile(r.Context(), userID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// identityRequest is the body of PUT /profile.
type identityRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

func (s *Server) handleSetIdentity(w http.ResponseWriter, r *http.Request) {
	var req identityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	view, err := s.svc.SetIdentity(r.Context(), engagement.IdentityRequest{
		UserID:      userID(r),
		Username:    req.Username,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePublicProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.PublicProfileByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.svc.Badges(r.Context(), userID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"badges": badges})
}

func (s *Server) handleDailyChallenge(w http.ResponseWriter, r *http.Request) {
	dc, err := s.svc.DailyChallenge(r.Context(), userID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dc)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, codeBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.svc.Leaderboard(r.Context(), limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleStartQuest(w http.ResponseWriter, r *http.Request) {
	questID := chi.URLParam(r, "questID")
	if _, err := s.svc.Quest(r.Context(), questID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	progress, err := s.svc.StartQuest(r.Context(), userID(r), questID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// submitRequest is the body of POST /quests/{questID}/submit.
// Submission is any JSON value; a JSON string is evaluated as plain text.
type submitRequest struct {
	SubmissionType string          `json:"submission_type"`
	Submission     json.RawMessage `json:"submission"`
	BaseXP         *int64          `json:"base_xp,omitempty"`
}

type submitResponse struct {
	*domain.CompletionResult
	AIFeedback *domain.AIFeedback `json:"ai_feedback,omitempty"`
}

func (s *Server) handleSubmitQuest(w http.ResponseWriter, r *http.Request) {
	questID := chi.URLParam(r, "questID")
	uid := userID(r)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.Submission) == 0 {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, "submission is required")
		return
	}

	quest, err := s.svc.Quest(r.Context(), questID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	baseXP := quest.XPReward
	if req.BaseXP != nil {
		baseXP = *req.BaseXP
	}

	done, err := s.svc.IsCompleted(r.Context(), uid, questID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	// A resubmission is not evaluated. Otherwise evaluation never blocks
	// progression: without a verdict the completion is stored with no
	// feedback.
	var feedback *domain.AIFeedback
	if !done {
		verdict, err := s.evaluator.Evaluate(r.Context(), evaluation.Request{
			QuestID:     quest.ID,
			QuestTitle:  quest.Title,
			Description: quest.Description,
			Difficulty:  quest.Difficulty,
			Submission:  submissionText(req.Submission),
		})
		if err != nil {
			s.log.Warn("evaluation unavailable, completing without feedback",
				zap.String("user_id", uid), zap.String("quest_id", questID), zap.Error(err))
		} else {
			feedback = &verdict
		}
	}

	result, err := s.svc.CompleteQuest(r.Context(), engagement.CompletionRequest{
		UserID:     uid,
		QuestID:    questID,
		BaseXP:     baseXP,
		Submission: domain.Submission{Type: req.SubmissionType, Data: req.Submission},
		AIFeedback: feedback,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if result.AlreadyCompleted {
		feedback = nil // nothing was stored
	}

	writeJSON(w, http.StatusOK, submitResponse{CompletionResult: result, AIFeedback: feedback})
}

// submissionText returns the text to evaluate: the string itself for a
// JSON string, the raw JSON otherwise.
func submissionText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
