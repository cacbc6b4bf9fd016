package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	CacheNoCache = 0
	CacheCustom  = -1
)

// CacheRouter sets Cache-Control on every response of the routes it wraps
type CacheRouter struct {
	CacheTime int // seconds, defaults to CacheNoCache = 0
}

func (cr *CacheRouter) Handler() gin.HandlerFunc {
	value := "no-cache"
	if cr.CacheTime > 0 {
		value = "private, max-age=" + strconv.Itoa(cr.CacheTime)
	}
	return func(c *gin.Context) {
		if cr.CacheTime != CacheCustom {
			c.Header("Cache-Control", value)
		}
		c.Next()
	}
}
