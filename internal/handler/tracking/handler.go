package tracking

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/raksha-app/sos-api/internal/handler"
	"github.com/raksha-app/sos-api/internal/tracking"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin browsers are the expected clients.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Handler struct {
	store  tracking.Store
	feed   *Feed
	logger zerolog.Logger
}

func NewHandler(store tracking.Store, feed *Feed, logger zerolog.Logger) *Handler {
	return &Handler{
		store:  store,
		feed:   feed,
		logger: logger.With().Str("component", "tracking").Logger(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/tracking")
	{
		group.GET("/:eventID", h.GetSession)
		group.POST("/:eventID/subscribers", h.AddSubscriber)
		group.DELETE("/:eventID/subscribers/:subscriberID", h.RemoveSubscriber)
		group.GET("/:eventID/ws", h.Live)
	}
}

func (h *Handler) GetSession(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}

	session, err := h.store.Get(c.Request.Context(), eventID)
	if err != nil {
		c.Error(err)
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("tracking session not found"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(session))
}

func (h *Handler) AddSubscriber(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}

	var req struct {
		SubscriberID string `json:"subscriber_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	added, err := h.store.AddSubscriber(c.Request.Context(), eventID, req.SubscriberID)
	if err != nil {
		c.Error(err)
		return
	}
	if !added {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("tracking session not found"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"subscribed": true}))
}

func (h *Handler) RemoveSubscriber(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}

	removed, err := h.store.RemoveSubscriber(c.Request.Context(), eventID, c.Param("subscriberID"))
	if err != nil {
		c.Error(err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("tracking session not found"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"subscribed": false}))
}

// Live upgrades to a websocket and streams the event's location
// updates until the client disconnects.
func (h *Handler) Live(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}

	subscriberID := c.Query("subscriber_id")
	if subscriberID == "" {
		subscriberID = uuid.New().String()
	}

	added, err := h.store.AddSubscriber(c.Request.Context(), eventID, subscriberID)
	if err != nil {
		c.Error(err)
		return
	}
	if !added {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("tracking session not found"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.store.RemoveSubscriber(c.Request.Context(), eventID, subscriberID)
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub := h.feed.register(eventID, subscriberID)
	defer func() {
		h.feed.unregister(eventID, sub)
		h.store.RemoveSubscriber(c.Request.Context(), eventID, subscriberID)
		conn.Close()
	}()

	done := make(chan struct{})
	go h.readLoop(conn, done)
	h.writeLoop(conn, sub, done)
}

// readLoop drains client frames so pongs and close frames are
// processed.
func (h *Handler) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writeLoop(conn *websocket.Conn, sub *subscriber, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case payload, ok := <-sub.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) eventID(c *gin.Context) (uuid.UUID, bool) {
	eventID, err := uuid.Parse(c.Param("eventID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid event ID"))
		return uuid.Nil, false
	}
	return eventID, true
}
