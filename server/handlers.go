package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ceyewan/portalgun/explorer"
	"github.com/ceyewan/portalgun/model"
	"github.com/ceyewan/portalgun/xerrors"
)

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) characterID(c *gin.Context) (model.CharacterID, bool) {
	id, err := model.NewCharacterID(c.Param("id"))
	if err != nil {
		s.abort(c, err)
		return "", false
	}
	return id, true
}

type listResponse struct {
	Filters       explorer.Filters    `json:"filters"`
	ActiveFilters int                 `json:"activeFilters"`
	NextSort      explorer.SortOption `json:"nextSort"`
	*explorer.ListResult
}

func (s *Server) listCharacters(c *gin.Context) {
	f := explorer.ParseFilters(c.Request.URL.Query())
	res, err := s.deps.Explorer.List(c.Request.Context(), f)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{
		Filters:       f,
		ActiveFilters: f.ActiveCount(),
		NextSort:      f.NextSort(),
		ListResult:    res,
	})
}

func (s *Server) getCharacter(c *gin.Context) {
	id, ok := s.characterID(c)
	if !ok {
		return
	}
	d, err := s.deps.Explorer.Character(c.Request.Context(), id)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"character": d,
		"comments":  s.deps.Comments.List(id),
	})
}

func (s *Server) listFavorites(c *gin.Context) {
	list, err := s.deps.Explorer.Favorites(c.Request.Context())
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": list, "count": len(list)})
}

func (s *Server) toggleFavorite(c *gin.Context) {
	id, ok := s.characterID(c)
	if !ok {
		return
	}
	fav := s.deps.Favorites.Toggle(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"id": id, "favorite": fav})
}

func (s *Server) listDeleted(c *gin.Context) {
	list := s.deps.Explorer.Deleted(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"results": list, "count": s.deps.Deleted.Count()})
}

func (s *Server) markDeleted(c *gin.Context) {
	id, ok := s.characterID(c)
	if !ok {
		return
	}
	s.deps.Deleted.MarkAsDeleted(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

func (s *Server) restore(c *gin.Context) {
	id, ok := s.characterID(c)
	if !ok {
		return
	}
	s.deps.Explorer.Restore(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": false})
}

func (s *Server) restoreAll(c *gin.Context) {
	n := s.deps.Explorer.RestoreAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"restored": n})
}

func (s *Server) listComments(c *gin.Context) {
	id, ok := s.characterID(c)
	if !ok {
		return
	}
	list := s.deps.Comments.List(id)
	c.JSON(http.StatusOK, gin.H{"results": list, "count": len(list)})
}

type commentRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

func (s *Server) bindComment(c *gin.Context) (commentRequest, bool) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, xerrors.Wrap(xerrors.ErrInvalidInput, "invalid json: "+err.Error()))
		return req, false
	}
	return req, true
}

func (s *Server) addComment(c *gin.Context) {
	id, ok := s.characterID(c)
	if !ok {
		return
	}
	req, ok := s.bindComment(c)
	if !ok {
		return
	}
	cm, err := s.deps.Comments.Add(c.Request.Context(), id, req.Text, req.Author)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, cm)
}

func (s *Server) updateComment(c *gin.Context) {
	id, ok := s.characterID(c)
	if !ok {
		return
	}
	commentID, err := model.NewCommentID(c.Param("commentID"))
	if err != nil {
		s.abort(c, err)
		return
	}
	req, ok := s.bindComment(c)
	if !ok {
		return
	}
	cm, err := s.deps.Comments.Update(c.Request.Context(), id, commentID, req.Text)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, cm)
}

func (s *Server) deleteComment(c *gin.Context) {
	id, ok := s.characterID(c)
	if !ok {
		return
	}
	commentID, err := model.NewCommentID(c.Param("commentID"))
	if err != nil {
		s.abort(c, err)
		return
	}
	s.deps.Comments.Delete(c.Request.Context(), id, commentID)
	c.Status(http.StatusNoContent)
}

func (s *Server) clearComments(c *gin.Context) {
	id, ok := s.characterID(c)
	if !ok {
		return
	}
	s.deps.Comments.DeleteAllForCharacter(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}

// getAvatar 经请求队列代理头像，失败时返回占位图。只代理 AvatarHosts 内的地址。
func (s *Server) getAvatar(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		s.abort(c, xerrors.Wrap(xerrors.ErrInvalidInput, "server: url is required"))
		return
	}
	if !s.cfg.avatarURLAllowed(url) {
		s.abort(c, xerrors.Wrapf(xerrors.ErrInvalidInput, "server: avatar host not allowed: %s", url))
		return
	}
	blob, ok := s.deps.Avatars.LoadOrPlaceholder(c.Request.Context(), url)
	if ok {
		c.Header("Cache-Control", "public, max-age=86400")
	} else {
		c.Header("X-Avatar-Placeholder", "true")
		c.Header("Cache-Control", "no-store")
	}
	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}

func (s *Server) installStatus(c *gin.Context) {
	st, err := s.prompt.status(c.Request.Context())
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) dismissInstall(c *gin.Context) {
	st, err := s.prompt.dismiss(c.Request.Context())
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
