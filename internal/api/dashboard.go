// Copyright 2025 Video Insight Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatsRouter registers the queue occupancy endpoint used by dashboards and
// operators to see how busy the engine is.
//
//	GET /stats/queue  running and queued counts, capacity, running task ids
func (router *Router) StatsRouter(r *gin.RouterGroup) {
	stats := r.Group("/stats")
	{
		stats.GET("/queue", func(c *gin.Context) {
			c.JSON(http.StatusOK, router.Service.QueueStats())
		})
	}
}
