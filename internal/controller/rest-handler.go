package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/syncmiru/server/internal/domain"
	"github.com/syncmiru/server/internal/repository/user"
	"github.com/syncmiru/server/internal/repository/wssender"
	"github.com/syncmiru/server/internal/service/room"
	"github.com/syncmiru/server/pkg/rest"
)

type roomSettingsRequest struct {
	Name                    string          `json:"name" validate:"required,max=64"`
	PlaybackSpeed           decimal.Decimal `json:"playback_speed"`
	DesyncTolerance         decimal.Decimal `json:"desync_tolerance"`
	MinorDesyncPlaybackSlow decimal.Decimal `json:"minor_desync_playback_slow"`
	MajorDesyncMin          decimal.Decimal `json:"major_desync_min"`
	Invites                 []string        `json:"invites" validate:"omitempty,dive,email"`
}

func (req roomSettingsRequest) settings() domain.RoomSettings {
	return domain.RoomSettings{
		Name:                    req.Name,
		PlaybackSpeed:           req.PlaybackSpeed,
		DesyncTolerance:         req.DesyncTolerance,
		MinorDesyncPlaybackSlow: req.MinorDesyncPlaybackSlow,
		MajorDesyncMin:          req.MajorDesyncMin,
	}
}

func (c *controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var req roomSettingsRequest

	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		Settings: req.settings(),
		Invites:  req.Invites,
	})
	if err != nil {
		c.writeServiceError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": map[string]any{"rid": resp.Rid}})
}

func (c *controller) listRooms(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": c.roomService.ListRooms(r.Context())})
}

func (c *controller) updateRoomSettings(w http.ResponseWriter, r *http.Request) {
	rawRid, err := strconv.ParseInt(chi.URLParam(r, "room-id"), 10, 32)
	if err != nil || rawRid < 1 {
		rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
		return
	}

	var req roomSettingsRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.UpdateRoomSettings(r.Context(), &room.UpdateRoomSettingsParams{
		Rid:      domain.RoomId(rawRid),
		Settings: req.settings(),
	})
	if err != nil {
		c.writeServiceError(w, err)
		return
	}

	c.sender.ToUsers(r.Context(), resp.Members, &wssender.Output{
		Type:    room.EventPlaybackSpeed,
		Payload: map[string]any{"value": req.PlaybackSpeed},
	})

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": "ok"})
}

type createUserRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=32"`
	Displayname string `json:"displayname" validate:"omitempty,max=64"`
	Email       string `json:"email" validate:"required,email"`
	AvatarUrl   string `json:"avatar" validate:"omitempty,url"`
}

func (c *controller) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest

	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.CreateUser(r.Context(), &room.CreateUserParams{
		Username:    req.Username,
		Displayname: req.Displayname,
		Email:       req.Email,
		AvatarUrl:   req.AvatarUrl,
	})
	if err != nil {
		c.writeServiceError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": map[string]any{"uid": resp.Uid}})
}

func (c *controller) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrValidation):
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
	case errors.Is(err, room.ErrRoomNotFound):
		rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": err.Error()})
	case errors.Is(err, user.ErrUsernameTaken), errors.Is(err, user.ErrEmailTaken):
		rest.WriteJSON(w, http.StatusConflict, rest.Envelope{"error": err.Error()})
	default:
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": err.Error()})
	}
}
