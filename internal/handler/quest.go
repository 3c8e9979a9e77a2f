package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/quests/internal/middleware"
	"github.com/dukerupert/quests/internal/model"
	"github.com/dukerupert/quests/internal/store"
	"github.com/dukerupert/quests/internal/ui"
	"github.com/dukerupert/quests/internal/websocket"
)

const (
	flashCreated   = "Quest was successfully created."
	flashUpdated   = "Quest was successfully updated."
	flashDestroyed = "Quest was successfully destroyed."
)

type QuestHandler struct {
	store  *store.QuestStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewQuestHandler(s *store.QuestStore, hub *websocket.Hub, logger *slog.Logger) *QuestHandler {
	return &QuestHandler{store: s, hub: hub, logger: logger}
}

func (h *QuestHandler) publish(typ string, id int64, q *model.Quest) {
	if h.hub != nil {
		h.hub.Publish(websocket.NewEvent(typ, id, q))
	}
}

// questParams is the quest[...] payload. Nil fields were not sent.
type questParams struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *bool   `json:"status"`
}

func (p questParams) empty() bool {
	return p.Name == nil && p.Description == nil && p.Status == nil
}

// readParams accepts {"quest": {...}} JSON or quest[...] form fields.
func readParams(r *http.Request) (questParams, error) {
	if isJSONBody(r) {
		var body struct {
			Quest questParams `json:"quest"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return questParams{}, err
		}
		return body.Quest, nil
	}

	if err := r.ParseMultipartForm(1 << 20); err != nil && err != http.ErrNotMultipart {
		return questParams{}, err
	}
	var p questParams
	if vs, ok := r.PostForm["quest[name]"]; ok && len(vs) > 0 {
		p.Name = &vs[0]
	}
	if vs, ok := r.PostForm["quest[description]"]; ok && len(vs) > 0 {
		p.Description = &vs[0]
	}
	if vs, ok := r.PostForm["quest[status]"]; ok && len(vs) > 0 {
		b, err := strconv.ParseBool(vs[len(vs)-1])
		if err != nil {
			return questParams{}, err
		}
		p.Status = &b
	}
	return p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Index serves the list page, or the list as JSON.
func (h *QuestHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/quests" {
		http.NotFound(w, r)
		return
	}

	quests, err := h.store.List()
	if err != nil {
		h.logger.Error("list quests", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list quests")
		return
	}
	if quests == nil {
		quests = []model.Quest{}
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, quests)
		return
	}

	st := ui.NewState("", quests, middleware.CSRFToken(r.Context()))
	if msg := popFlash(w, r); msg != "" {
		st.Notices = append(st.Notices, ui.Notice{Kind: ui.NoticeFlash, Message: msg})
	}
	// ?new=1 is the link behind "New quest" when no script runs.
	if r.URL.Query().Get("new") != "" {
		st.Dialog.Open = true
		st.Dialog.Focus = "quest[name]"
		st.BodyScrollLocked = true
	}
	h.page(w, st)
}

// Fun lists completed quests.
func (h *QuestHandler) Fun(w http.ResponseWriter, r *http.Request) {
	quests, err := h.store.ListCompleted()
	if err != nil {
		h.logger.Error("list completed quests", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list quests")
		return
	}
	if quests == nil {
		quests = []model.Quest{}
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, quests)
		return
	}

	st := ui.NewState("Fun", quests, middleware.CSRFToken(r.Context()))
	st.ReadOnly = true
	h.page(w, st)
}

func (h *QuestHandler) Show(w http.ResponseWriter, r *http.Request) {
	quest, ok := h.load(w, r)
	if !ok {
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, quest)
		return
	}

	st := ui.NewState(quest.Name, []model.Quest{*quest}, middleware.CSRFToken(r.Context()))
	st.Detail = quest.ID
	if msg := popFlash(w, r); msg != "" {
		st.Notices = append(st.Notices, ui.Notice{Kind: ui.NoticeFlash, Message: msg})
	}
	h.page(w, st)
}

func (h *QuestHandler) Create(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(deref(params.Name))
	description := deref(params.Description)
	if errs := model.ValidateQuest(name, description); !errs.Empty() {
		h.invalid(w, r, errs, func(st *ui.State) {
			st.Dialog.Open = true
			st.Dialog.Name = deref(params.Name)
			st.Dialog.Description = description
		})
		return
	}

	quest, err := h.store.Create(name, description)
	if err != nil {
		h.logger.Error("create quest", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create quest")
		return
	}
	h.logger.Info("quest created", "quest_id", quest.ID)
	h.publish(websocket.QuestCreated, quest.ID, quest)

	if wantsJSON(r) {
		w.Header().Set("Location", "/quests/"+strconv.FormatInt(quest.ID, 10))
		writeJSON(w, http.StatusCreated, quest)
		return
	}
	setFlash(w, flashCreated)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Update changes the completion flag and, when sent, name and description.
func (h *QuestHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.load(w, r)
	if !ok {
		return
	}

	params, err := readParams(r)
	if err != nil || params.empty() {
		writeError(w, http.StatusBadRequest, "quest parameters required")
		return
	}

	var quest *model.Quest
	if params.Name == nil && params.Description == nil {
		quest, err = h.store.SetStatus(existing.ID, *params.Status)
	} else {
		name, description, status := existing.Name, existing.Description, existing.Status
		if params.Name != nil {
			name = strings.TrimSpace(*params.Name)
		}
		if params.Description != nil {
			description = *params.Description
		}
		if params.Status != nil {
			status = *params.Status
		}
		if errs := model.ValidateQuest(name, description); !errs.Empty() {
			h.invalid(w, r, errs, func(st *ui.State) { st.Detail = existing.ID })
			return
		}
		quest, err = h.store.Update(existing.ID, name, description, status)
	}
	if err != nil {
		h.logger.Error("update quest", "quest_id", existing.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update quest")
		return
	}
	if quest == nil {
		writeError(w, http.StatusNotFound, "quest not found")
		return
	}
	h.publish(websocket.QuestUpdated, quest.ID, quest)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	setFlash(w, flashUpdated)
	http.Redirect(w, r, back(r, "/quests/"+strconv.FormatInt(quest.ID, 10)), http.StatusSeeOther)
}

func (h *QuestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	found, err := h.store.Delete(id)
	if err != nil {
		h.logger.Error("delete quest", "quest_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete quest")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "quest not found")
		return
	}
	h.logger.Info("quest deleted", "quest_id", id)
	h.publish(websocket.QuestDeleted, id, nil)

	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	setFlash(w, flashDestroyed)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// load resolves {id} to a quest, writing 400 or 404 when it cannot.
func (h *QuestHandler) load(w http.ResponseWriter, r *http.Request) (*model.Quest, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	quest, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get quest", "quest_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get quest")
		return nil, false
	}
	if quest == nil {
		writeError(w, http.StatusNotFound, "quest not found")
		return nil, false
	}
	return quest, true
}

// invalid answers a failed validation: the field map as JSON, or the page
// re-rendered with the errors shown.
func (h *QuestHandler) invalid(w http.ResponseWriter, r *http.Request, errs model.ValidationErrors, shape func(st *ui.State)) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusUnprocessableEntity, errs)
		return
	}

	quests, err := h.store.List()
	if err != nil {
		h.logger.Error("list quests", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list quests")
		return
	}
	st := ui.NewState("", quests, middleware.CSRFToken(r.Context()))
	shape(&st)
	st.Dialog.Errors = errs
	if err := writePage(w, http.StatusUnprocessableEntity, st); err != nil {
		h.logger.Error("render page", "error", err)
	}
}

func (h *QuestHandler) page(w http.ResponseWriter, st ui.State) {
	if err := writePage(w, http.StatusOK, st); err != nil {
		h.logger.Error("render page", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render page")
	}
}
