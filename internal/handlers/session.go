package handlers

import (
	"net/http"

	"feedbackboard/internal/config"
	"feedbackboard/internal/serviceinterfaces"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BoardIDFromSession returns the browser's board id, assigning a fresh one on the first visit
func BoardIDFromSession(c *gin.Context) string {
	id, _ := SessionBoardID(c)
	return id
}

// SessionBoardID is BoardIDFromSession that also reports whether the id was just assigned
func SessionBoardID(c *gin.Context) (string, bool) {
	session := sessions.Default(c)
	if id, ok := session.Get(config.SessionBoardKey).(string); ok && id != "" {
		return id, false
	}
	id := uuid.NewString()
	session.Set(config.SessionBoardKey, id)
	_ = session.Save()
	return id, true
}

// openBoard returns the request's board. A first visit that only reads gets a board the
// registry does not keep; a fresh session has nothing stored yet.
func openBoard(c *gin.Context, registry serviceinterfaces.BoardRegistryInterface) (serviceinterfaces.FeedbackBoardInterface, string, error) {
	boardID, fresh := SessionBoardID(c)
	if fresh && readOnlyMethod(c.Request.Method) {
		board, err := registry.TransientBoard(c.Request.Context(), boardID)
		return board, boardID, err
	}
	board, err := registry.Board(c.Request.Context(), boardID)
	return board, boardID, err
}

func readOnlyMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// AddFlash queues a notification for the next page render
func AddFlash(c *gin.Context, message string) {
	if message == "" {
		return
	}
	session := sessions.Default(c)
	session.AddFlash(message)
	_ = session.Save()
}

// PopFlashes returns and clears the queued notifications
func PopFlashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save()

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}
