package handlers

import (
	"net/http"

	"edgesync/internal/logger"
	"edgesync/internal/transport"

	"github.com/gin-gonic/gin"
)

// ConnectionHandler lets the admin UI verify candidate credentials before
// saving them. Requests carry the full credential set; the currently
// configured connection is never touched.
type ConnectionHandler struct {
	dial   transport.Dialer
	logger *logger.Logger
}

func NewConnectionHandler(dial transport.Dialer, logger *logger.Logger) *ConnectionHandler {
	return &ConnectionHandler{dial: dial, logger: logger}
}

type connectionRequest struct {
	Type     string `json:"type"`
	Host     string `json:"host"`
	Username string `json:"username"`
	Password string `json:"password"`
	Port     int    `json:"port"`
	Folder   string `json:"folder"`
}

func (r connectionRequest) config() transport.Config {
	port := r.Port
	if port == 0 {
		if r.Type == "ftp" {
			port = 21
		} else {
			port = 22
		}
	}
	return transport.Config{
		Kind:     r.Type,
		Host:     r.Host,
		Username: r.Username,
		Password: r.Password,
		Port:     port,
	}
}

// Test opens and immediately closes a connection with the submitted
// credentials.
func (h *ConnectionHandler) Test(c *gin.Context) {
	var req connectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := req.config()
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tr, err := h.dial(cfg)
	if err != nil {
		h.logger.Info("Connection test to %s failed: %v", cfg.Addr(), err)
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"connected": false, "error": err.Error()}})
		return
	}
	tr.Close()

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"connected": true}})
}

// Folders checks that the Inbox and Outbox directories exist under the
// submitted base folder.
func (h *ConnectionHandler) Folders(c *gin.Context) {
	var req connectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := req.config()
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tr, err := h.dial(cfg)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"connected": false, "error": err.Error()}})
		return
	}
	defer tr.Close()

	inbox := folderExists(tr, transport.InboxPath(req.Folder))
	outbox := folderExists(tr, transport.OutboxPath(req.Folder))

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"connected": true,
		"inbox":     inbox,
		"outbox":    outbox,
	}})
}

func folderExists(tr transport.Transport, path string) bool {
	_, err := tr.List(path)
	return err == nil
}
