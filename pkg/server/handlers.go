package server

import (
	"encoding/json"
	"net/http"

	"github.com/devicelab-dev/microej-driver/pkg/core"
	"github.com/gin-gonic/gin"
)

// findRequest is the body of POST /element and /elements.
type findRequest struct {
	Using string `json:"using" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// actionsRequest is the body of POST /actions.
type actionsRequest struct {
	Actions json.RawMessage `json:"actions"`
}

func writeValue(c *gin.Context, value interface{}) {
	c.JSON(http.StatusOK, gin.H{"value": value})
}

func (s *Server) handleStatus(c *gin.Context) {
	writeValue(c, gin.H{
		"ready":   true,
		"message": "microej-driver is ready to accept commands",
	})
}

func (s *Server) handleNewSession(c *gin.Context) {
	id := s.createSession()
	writeValue(c, gin.H{
		"sessionId":    id,
		"capabilities": s.capabilities(),
	})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	s.deleteSession(c.Param("sessionId"))
	writeValue(c, nil)
}

// bindFind parses and validates a find request. Only the driver's locator
// strategies are accepted; anything else never reaches the driver.
func (s *Server) bindFind(c *gin.Context) (findRequest, bool) {
	var req findRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithW3CError(c, http.StatusBadRequest, "invalid argument", err.Error())
		return req, false
	}
	if !core.SupportsStrategy(s.driver, req.Using) {
		abortWithW3CError(c, http.StatusBadRequest, "invalid selector",
			"Locator strategy '"+req.Using+"' is not supported for this session")
		return req, false
	}
	return req, true
}

func (s *Server) handleFindElement(c *gin.Context) {
	req, ok := s.bindFind(c)
	if !ok {
		return
	}
	handle, err := s.driver.FindElement(c.Request.Context(), req.Using, req.Value)
	if err != nil {
		abortWithDriverError(c, err)
		return
	}
	writeValue(c, handle)
}

func (s *Server) handleFindElements(c *gin.Context) {
	req, ok := s.bindFind(c)
	if !ok {
		return
	}
	handles, err := s.driver.FindElements(c.Request.Context(), req.Using, req.Value)
	if err != nil {
		abortWithDriverError(c, err)
		return
	}
	writeValue(c, handles)
}

func (s *Server) handleClick(c *gin.Context) {
	if err := s.driver.Click(c.Request.Context(), c.Param("elementId")); err != nil {
		abortWithDriverError(c, err)
		return
	}
	writeValue(c, nil)
}

func (s *Server) handleGetText(c *gin.Context) {
	text, err := s.driver.GetText(c.Request.Context(), c.Param("elementId"))
	if err != nil {
		abortWithDriverError(c, err)
		return
	}
	writeValue(c, text)
}

func (s *Server) handleDisplayed(c *gin.Context) {
	displayed, err := s.driver.ElementDisplayed(c.Request.Context(), c.Param("elementId"))
	if err != nil {
		abortWithDriverError(c, err)
		return
	}
	writeValue(c, displayed)
}

func (s *Server) handleEnabled(c *gin.Context) {
	enabled, err := s.driver.ElementEnabled(c.Request.Context(), c.Param("elementId"))
	if err != nil {
		abortWithDriverError(c, err)
		return
	}
	writeValue(c, enabled)
}

func (s *Server) handleGetAttribute(c *gin.Context) {
	s.writeRaw(c, func() (json.RawMessage, error) {
		return s.driver.GetAttribute(c.Request.Context(), c.Param("name"), c.Param("elementId"))
	})
}

func (s *Server) handleGetRect(c *gin.Context) {
	s.writeRaw(c, func() (json.RawMessage, error) {
		return s.driver.GetElementRect(c.Request.Context(), c.Param("elementId"))
	})
}

func (s *Server) handleGetCSS(c *gin.Context) {
	s.writeRaw(c, func() (json.RawMessage, error) {
		return s.driver.GetCSSProperty(c.Request.Context(), c.Param("name"), c.Param("elementId"))
	})
}

func (s *Server) handleScreenshot(c *gin.Context) {
	s.writeRaw(c, func() (json.RawMessage, error) {
		return s.driver.Screenshot(c.Request.Context())
	})
}

func (s *Server) handleWindowRect(c *gin.Context) {
	s.writeRaw(c, func() (json.RawMessage, error) {
		return s.driver.GetWindowRect(c.Request.Context())
	})
}

func (s *Server) handleSource(c *gin.Context) {
	s.writeRaw(c, func() (json.RawMessage, error) {
		return s.driver.GetPageSource(c.Request.Context())
	})
}

// handlePerformActions forwards the "actions" member of the body unchanged.
func (s *Server) handlePerformActions(c *gin.Context) {
	var req actionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithW3CError(c, http.StatusBadRequest, "invalid argument", err.Error())
		return
	}
	if len(req.Actions) == 0 {
		abortWithW3CError(c, http.StatusBadRequest, "invalid argument", "'actions' is required")
		return
	}
	if err := s.driver.PerformActions(c.Request.Context(), req.Actions); err != nil {
		abortWithDriverError(c, err)
		return
	}
	writeValue(c, nil)
}

func (s *Server) handleDeleteCookies(c *gin.Context) {
	if err := s.driver.DeleteCookies(c.Request.Context()); err != nil {
		abortWithDriverError(c, err)
		return
	}
	writeValue(c, nil)
}

func (s *Server) handleDeleteCookie(c *gin.Context) {
	if err := s.driver.DeleteCookie(c.Request.Context(), c.Param("name")); err != nil {
		abortWithDriverError(c, err)
		return
	}
	writeValue(c, nil)
}

func (s *Server) writeRaw(c *gin.Context, fn func() (json.RawMessage, error)) {
	raw, err := fn()
	if err != nil {
		abortWithDriverError(c, err)
		return
	}
	writeValue(c, raw)
}
