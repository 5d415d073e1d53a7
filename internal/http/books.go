package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookmemo/internal/aggregator"
	"github.com/mrlokans/bookmemo/internal/workerpool"
)

// BooksController serves provider search, ranking and ISBN resolution.
type BooksController struct {
	books       BookSearch
	annotations AnnotationService
}

func NewBooksController(books BookSearch, annotations AnnotationService) *BooksController {
	return &BooksController{books: books, annotations: annotations}
}

func (bc *BooksController) respondResult(c *gin.Context, f *workerpool.Future[aggregator.Result]) {
	result, err := f.Await(c.Request.Context())
	if err != nil {
		if aggregator.IsAllFailed(err) {
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error(), Code: codeUpstream, Details: result.Outcomes})
			return
		}
		respondAppError(c, err, "books")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Suggestions handles GET /api/books/suggestions?q=
func (bc *BooksController) Suggestions(c *gin.Context) {
	bc.respondResult(c, bc.books.Suggestions(c.Request.Context(), c.Query("q")))
}

// Search handles GET /api/books/search?q=
func (bc *BooksController) Search(c *gin.Context) {
	bc.respondResult(c, bc.books.Search(c.Request.Context(), c.Query("q")))
}

// Ranking handles GET /api/books/ranking
func (bc *BooksController) Ranking(c *gin.Context) {
	bc.respondResult(c, bc.books.Ranking(c.Request.Context()))
}

// Resolve handles GET /api/books/resolve?isbn=
func (bc *BooksController) Resolve(c *gin.Context) {
	isbn := strings.TrimSpace(c.Query("isbn"))
	if isbn == "" {
		respondBadRequest(c, "isbn is required")
		return
	}

	volumeID, err := bc.annotations.ResolveVolumeID(c.Request.Context(), isbn).Await(c.Request.Context())
	if err != nil {
		respondAppError(c, err, "volume")
		return
	}
	c.JSON(http.StatusOK, gin.H{"isbn": isbn, "volumeId": volumeID})
}
