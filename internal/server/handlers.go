package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inovacc/vetlink/internal/model"
	"github.com/inovacc/vetlink/internal/store"
)

// petColumns are the pet fields a listing may search and sort on.
var petColumns = []string{"nombre", "especie", "raza", "sexo", "fecha_nacimiento", "usuario_cliente"}

// listParams are the search and ordering parameters shared by listings.
type listParams struct {
	search string
	column string
	desc   bool
}

func parseListParams(c *gin.Context, defaultColumn string, columns []string) (listParams, bool) {
	p := listParams{
		search: c.Query("search"),
		column: c.DefaultQuery("column", defaultColumn),
		desc:   c.Query("order") == string(model.Descending),
	}

	for _, col := range columns {
		if col == p.column {
			return p, true
		}
	}

	return p, false
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListPets(c *gin.Context) {
	params, ok := parseListParams(c, "nombre", petColumns)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column: " + params.column})
		return
	}

	page, err := parsePage(c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": invalidPageDetail})
		return
	}

	opts := store.ListOptions{Column: params.column, Desc: params.desc}

	if params.search != "" {
		if params.column == "fecha_nacimiento" {
			year := s.now().Year()

			age, err := strconv.Atoi(params.search)
			if err != nil || age < 0 || age > year {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Age search must be a whole number between 0 and " + strconv.Itoa(year) + "."})
				return
			}

			born := year - age
			opts.BirthYear = &born
		} else {
			opts.Search = params.search
		}
	}

	servePage(s, c, page, func(p pageRequest) ([]model.Pet, int, error) {
		opts.Limit, opts.Offset = p.size, p.offset()
		return s.store.ListPets(c.Request.Context(), opts)
	})
}

func (s *Server) handleListOwners(c *gin.Context) {
	params, ok := parseListParams(c, "usuario", model.OwnerColumns)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column: " + params.column})
		return
	}

	page, err := parsePage(c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": invalidPageDetail})
		return
	}

	opts := store.ListOptions{Column: params.column, Search: params.search, Desc: params.desc}

	servePage(s, c, page, func(p pageRequest) ([]model.Owner, int, error) {
		opts.Limit, opts.Offset = p.size, p.offset()
		return s.store.ListOwners(c.Request.Context(), opts)
	})
}

// servePage runs fetch for the requested page and writes the envelope. A
// "last" page request needs the count first, so it fetches twice.
func servePage[T any](s *Server, c *gin.Context, page pageRequest, fetch func(pageRequest) ([]T, int, error)) {
	if page.number == 0 {
		_, count, err := fetch(pageRequest{number: 1, size: 1})
		if err != nil {
			s.internalError(c, err)
			return
		}

		page, _ = page.resolve(count)
	}

	results, count, err := fetch(page)
	if err != nil {
		s.internalError(c, err)
		return
	}

	if _, err := page.resolve(count); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": invalidPageDetail})
		return
	}

	c.JSON(http.StatusOK, newPageResponse(c, page, count, results))
}

func (s *Server) handleCreatePet(c *gin.Context) {
	var payload model.NewPet
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
		return
	}

	if err := payload.Validate(s.now()); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, verr.Fields)
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})

		return
	}

	pet, err := s.store.CreatePet(c.Request.Context(), payload)
	if err != nil {
		if errors.Is(err, store.ErrOwnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado."})
			return
		}

		s.internalError(c, err)

		return
	}

	s.logger.Info("pet created", "id", pet.ID, "owner", string(pet.Owner))
	c.JSON(http.StatusCreated, pet)
}

// duplicateUsernameDetail is reported under "usuario" when the username is taken.
const duplicateUsernameDetail = "A client with that username already exists."

func (s *Server) handleAddClient(c *gin.Context) {
	var payload model.Owner
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
		return
	}

	if err := payload.Validate(); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, verr.Fields)
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})

		return
	}

	owner := payload.Normalize()

	if err := s.store.CreateOwner(c.Request.Context(), owner); err != nil {
		if errors.Is(err, store.ErrOwnerExists) {
			c.JSON(http.StatusBadRequest, gin.H{"usuario": []string{duplicateUsernameDetail}})
			return
		}

		s.internalError(c, err)

		return
	}

	s.logger.Info("client created", "usuario", owner.Username)
	c.JSON(http.StatusCreated, owner)
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("request failed",
		"path", c.Request.URL.Path,
		"request_id", c.GetString(requestIDHeader),
		"error", err,
	)

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
}
