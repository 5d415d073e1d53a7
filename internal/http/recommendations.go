package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const genresTimeout = 10 * time.Second

// RecommendationsController serves recommendations and favorite genres.
type RecommendationsController struct {
	recommender Recommender
	genres      GenreStore
}

func NewRecommendationsController(recommender Recommender, genres GenreStore) *RecommendationsController {
	return &RecommendationsController{recommender: recommender, genres: genres}
}

// GenresRequest is the body of PUT /api/genres.
type GenresRequest struct {
	Genres []string `json:"genres" binding:"required"`
}

// Recommend handles GET /api/recommendations
func (rc *RecommendationsController) Recommend(c *gin.Context) {
	rec, err := rc.recommender.Recommend(c.Request.Context(), GetUserID(c)).Await(c.Request.Context())
	if err != nil {
		respondAppError(c, err, "recommendations")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetGenres handles GET /api/genres
func (rc *RecommendationsController) GetGenres(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), genresTimeout)
	defer cancel()

	genres, err := rc.genres.FavoriteGenres(ctx, GetUserID(c))
	if err != nil {
		respondAppError(c, err, "genres")
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

// SetGenres handles PUT /api/genres
// Blank and duplicate (case-insensitive) genres are dropped.
func (rc *RecommendationsController) SetGenres(c *gin.Context) {
	var req GenresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "genres is required")
		return
	}

	genres := make([]string, 0, len(req.Genres))
	seen := make(map[string]struct{}, len(req.Genres))
	for _, g := range req.Genres {
		g = strings.TrimSpace(g)
		key := strings.ToLower(g)
		if g == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		genres = append(genres, g)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), genresTimeout)
	defer cancel()

	if err := rc.genres.SetFavoriteGenres(ctx, GetUserID(c), genres); err != nil {
		respondAppError(c, err, "genres")
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}
