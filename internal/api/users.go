package api

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jobtrack/jobtrack/internal/domain"
	"github.com/jobtrack/jobtrack/internal/storage"
	"github.com/jobtrack/jobtrack/internal/store"
)

const (
	maxAvatarBytes  = 2 << 20
	avatarMaxDim    = 256
	avatarURLExpiry = time.Hour
)

type userResponse struct {
	domain.User
	Avatar string `json:"avatar,omitempty"`
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	ident, _ := identityFromContext(r.Context())

	user, found, err := s.users.Get(r.Context(), ident.UserID)
	if err != nil {
		s.logger.Errorf("fetch user failed for user %s: %v", ident.UserID, err)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": s.userResponse(r, user)})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ident, _ := identityFromContext(r.Context())
	if s.rejectDemo(w, ident) {
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := domain.UpdateUserRequest{
		Name:     r.FormValue("name"),
		LastName: r.FormValue("lastName"),
		Email:    r.FormValue("email"),
		Location: r.FormValue("location"),
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, found, err := s.users.Get(r.Context(), ident.UserID)
	if err != nil {
		s.logger.Errorf("fetch user failed for user %s: %v", ident.UserID, err)
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	user.Name = strings.TrimSpace(req.Name)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Email = strings.TrimSpace(req.Email)
	user.Location = strings.TrimSpace(req.Location)

	if file, _, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		key, uploadErr := s.storeAvatar(r, ident.UserID, file)
		if uploadErr != nil {
			writeError(w, http.StatusBadRequest, uploadErr.Error())
			return
		}
		if user.AvatarKey != "" {
			if err := s.avatars.RemoveAvatar(r.Context(), user.AvatarKey); err != nil {
				s.logger.Errorf("remove old avatar failed for user %s: %v", ident.UserID, err)
			}
		}
		user.AvatarKey = key
	}

	updated, err := s.users.Update(r.Context(), user)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "email already exists")
			return
		}
		s.logger.Errorf("update user failed for user %s: %v", ident.UserID, err)
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"msg": "user updated", "user": s.userResponse(r, updated)})
}

func (s *Server) handleAppStats(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.Count(r.Context())
	if err != nil {
		s.logger.Errorf("count users failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load app stats")
		return
	}
	jobs, err := s.jobs.CountAll(r.Context())
	if err != nil {
		s.logger.Errorf("count all jobs failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load app stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"users": users, "jobs": jobs})
}

// storeAvatar decodes the upload, scales it down, and writes it to the
// object store, returning the new object key.
func (s *Server) storeAvatar(r *http.Request, userID string, file io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		return "", errors.New("failed to read avatar upload")
	}
	if len(data) > maxAvatarBytes {
		return "", errors.New("avatar exceeds the 2MB limit")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", errors.New("avatar must be a PNG, JPEG or GIF image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, storage.Thumbnail(img, avatarMaxDim)); err != nil {
		return "", errors.New("failed to encode avatar")
	}

	key, err := s.avatars.UploadAvatar(r.Context(), userID, buf.Bytes(), "image/png")
	if err != nil {
		s.logger.Errorf("upload avatar failed for user %s: %v", userID, err)
		return "", errors.New("failed to store avatar")
	}
	return key, nil
}

func (s *Server) userResponse(r *http.Request, user domain.User) userResponse {
	resp := userResponse{User: user}
	if user.AvatarKey == "" {
		return resp
	}
	url, err := s.avatars.AvatarURL(r.Context(), user.AvatarKey, avatarURLExpiry)
	if err != nil {
		s.logger.Errorf("presign avatar failed for user %s: %v", user.ID, err)
		return resp
	}
	resp.Avatar = url
	return resp
}
