package http

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ysy950803/supportchat/internal/errors"
	"github.com/ysy950803/supportchat/internal/kvstore"
	"github.com/ysy950803/supportchat/internal/supportstate"
)

// casRetries bounds the read-merge-write cycle when concurrent writers
// collide on the document revision.
const casRetries = 3

func (s *Service) initRouter() {
	s.router.GET("/", s.handleIndex)

	auth := s.basicAuthMiddleware()

	// The original deployment left PUT unauthenticated; every verb that
	// touches the document is gated here. See DESIGN.md.
	chatState := s.router.Group("/chat_state", auth)
	{
		chatState.GET("", s.handleGetChatState)
		chatState.POST("", s.handlePostChatState)
		chatState.PUT("", s.handlePutChatState)
	}

	s.router.GET("/get_auth_key", auth, s.handleGetAuthKey)

	s.router.NoRoute(func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
}

// GET / is the liveness probe; always 200, no body, no auth.
func (s *Service) handleIndex(c *gin.Context) {
	c.Status(http.StatusOK)
}

// GET /chat_state returns the stored document, or the default document if
// nothing has been stored yet.
func (s *Service) handleGetChatState(c *gin.Context) {
	value, _, err := s.kv.Get(c.Request.Context(), supportstate.DocumentKey)
	if err == kvstore.ErrNotFound {
		c.JSON(http.StatusOK, supportstate.Default())
		return
	}
	if err != nil {
		errors.Err(c, errors.ServerError(err))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", value)
}

// POST /chat_state merges the incoming chats mapping into the stored
// document, key by key. Keys absent from the payload are untouched.
func (s *Service) handlePostChatState(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		errors.Err(c, errors.BadRequest("unreadable body"))
		return
	}

	body, err := supportstate.ParsePostBody(raw)
	if err != nil {
		errors.Err(c, err)
		return
	}

	ctx := c.Request.Context()
	for attempt := 0; attempt < casRetries; attempt++ {
		stored, rev, err := s.kv.Get(ctx, supportstate.DocumentKey)
		if err == kvstore.ErrNotFound {
			// First write: the request body becomes the document as-is.
			if err := s.kv.Put(ctx, supportstate.DocumentKey, body.Raw, 0); err != nil {
				if err == kvstore.ErrRevisionMismatch {
					continue
				}
				errors.Err(c, errors.ServerError(err))
				return
			}
			c.Data(http.StatusOK, "application/json; charset=utf-8", body.Raw)
			return
		}
		if err != nil {
			errors.Err(c, errors.ServerError(err))
			return
		}

		doc, err := supportstate.Decode(stored)
		if err != nil {
			errors.Err(c, errors.ServerError(err))
			return
		}
		doc.Merge(body.Chats)

		merged, err := doc.Encode()
		if err != nil {
			errors.Err(c, errors.ServerError(err))
			return
		}
		if err := s.kv.Put(ctx, supportstate.DocumentKey, merged, rev); err != nil {
			if err == kvstore.ErrRevisionMismatch {
				continue
			}
			errors.Err(c, errors.ServerError(err))
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", merged)
		return
	}

	errors.Err(c, errors.ServerError(kvstore.ErrRevisionMismatch))
}

// PUT /chat_state upserts a single chat entry. The entry timestamp is the
// server clock on create and update alike; a client-sent time is ignored.
func (s *Service) handlePutChatState(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		errors.Err(c, errors.BadRequest("unreadable body"))
		return
	}

	body, err := supportstate.ParsePutBody(raw)
	if err != nil {
		errors.Err(c, err)
		return
	}

	meta := supportstate.ChatMeta{
		Key:  body.Key,
		Name: body.Name,
		Time: time.Now().UTC(),
	}

	ctx := c.Request.Context()
	for attempt := 0; attempt < casRetries; attempt++ {
		doc := supportstate.Default()
		rev := uint64(0)

		stored, storedRev, err := s.kv.Get(ctx, supportstate.DocumentKey)
		switch err {
		case nil:
			doc, err = supportstate.Decode(stored)
			if err != nil {
				errors.Err(c, errors.ServerError(err))
				return
			}
			rev = storedRev
		case kvstore.ErrNotFound:
			// Lazily create the default document around the first entry.
		default:
			errors.Err(c, errors.ServerError(err))
			return
		}

		if err := doc.Upsert(meta); err != nil {
			errors.Err(c, errors.ServerError(err))
			return
		}

		encoded, err := doc.Encode()
		if err != nil {
			errors.Err(c, errors.ServerError(err))
			return
		}
		if err := s.kv.Put(ctx, supportstate.DocumentKey, encoded, rev); err != nil {
			if err == kvstore.ErrRevisionMismatch {
				continue
			}
			errors.Err(c, errors.ServerError(err))
			return
		}
		c.Status(http.StatusOK)
		return
	}

	errors.Err(c, errors.ServerError(kvstore.ErrRevisionMismatch))
}

// GET /get_auth_key serves the chat SDK secret for the support console.
func (s *Service) handleGetAuthKey(c *gin.Context) {
	key := s.conf.GetAuthKey()
	if key == "" {
		log.Warn().Msg("auth key requested but not configured")
		errors.Err(c, errors.New(http.StatusInternalServerError, "auth key not configured"))
		return
	}
	c.String(http.StatusOK, key)
}
