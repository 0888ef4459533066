package server

import "github.com/gin-gonic/gin"

func (s *Server) setupRoutes() {
	r := s.engine

	r.GET("/status", s.handleStatus)
	r.POST("/session", s.handleNewSession)

	session := r.Group("/session/:sessionId", s.requireSession())
	{
		session.DELETE("", s.handleDeleteSession)

		// Element lookup
		session.POST("/element", s.handleFindElement)
		session.POST("/elements", s.handleFindElements)

		// Element operations
		session.POST("/element/:elementId/click", s.handleClick)
		session.GET("/element/:elementId/text", s.handleGetText)
		session.GET("/element/:elementId/displayed", s.handleDisplayed)
		session.GET("/element/:elementId/enabled", s.handleEnabled)
		session.GET("/element/:elementId/attribute/:name", s.handleGetAttribute)
		session.GET("/element/:elementId/rect", s.handleGetRect)
		session.GET("/element/:elementId/css/:name", s.handleGetCSS)

		// Screen
		session.GET("/screenshot", s.handleScreenshot)
		session.GET("/window/rect", s.handleWindowRect)
		session.GET("/source", s.handleSource)

		// Input
		session.POST("/actions", s.handlePerformActions)

		// Cookies
		session.DELETE("/cookie", s.handleDeleteCookies)
		session.DELETE("/cookie/:name", s.handleDeleteCookie)
	}

	r.NoRoute(func(c *gin.Context) {
		abortWithW3CError(c, 404, "unknown command", "The requested resource could not be found, or a request was received using an HTTP method that is not supported by the mapped resource")
	})
}

// requireSession rejects requests for session ids this server did not issue.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("sessionId")
		if !s.hasSession(id) {
			abortWithW3CError(c, 404, "invalid session id", "A session is either terminated or not started")
			return
		}
		c.Next()
	}
}
