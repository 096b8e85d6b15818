// Package widget drives the availability widget: it loads the published
// views from a Store, tracks the viewer's selection and preferences, and runs
// the admin editing flows. Remote calls are awaited one at a time and every
// mutation is followed by re-fetching the collection it touched.
package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/example/availability-scheduler/internal/application"
	"github.com/example/availability-scheduler/internal/locale"
	"github.com/example/availability-scheduler/internal/logging"
	"github.com/example/availability-scheduler/internal/scheduler"
	"github.com/example/availability-scheduler/internal/selection"
	"github.com/example/availability-scheduler/internal/slottime"
)

// DefaultViewSlug is the active slug before any profile was loaded.
const DefaultViewSlug = "default"

// State is a snapshot of the controller state.
type State struct {
	Config     *application.Config
	Profiles   []application.Profile
	ActiveSlug string
	Slots      []scheduler.Slot
	Requests   []application.SlotRequest
	Language   locale.Language
	Timezone   string
	// Selected holds the selected slot ids in selection order.
	Selected []string
	IsAdmin  bool
	EditMode bool
	Notice   string
	Loading  bool
}

// Option customizes a Controller.
type Option func(*Controller)

func WithStorage(storage Storage) Option {
	return func(c *Controller) { c.storage = storage }
}

func WithClipboard(clipboard Clipboard) Option {
	return func(c *Controller) { c.clipboard = clipboard }
}

func WithPrompter(prompter Prompter) Option {
	return func(c *Controller) { c.prompter = prompter }
}

// WithLocation sets the page URL the preferences are read from and written to.
func WithLocation(u *url.URL) Option {
	return func(c *Controller) {
		if u != nil {
			copied := *u
			c.location = &copied
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator replaces the uuid based ids of new slots.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithViewerZone sets the zone of the device running the widget.
func WithViewerZone(zone string) Option {
	return func(c *Controller) { c.viewerZone = zone }
}

// Controller owns the widget state.
type Controller struct {
	store      Store
	storage    Storage
	clipboard  Clipboard
	prompter   Prompter
	location   *url.URL
	now        func() time.Time
	newID      func() string
	logger     *slog.Logger
	viewerZone string

	mounted atomic.Bool

	config     *application.Config
	profiles   []application.Profile
	activeSlug string
	slots      []scheduler.Slot
	requests   []application.SlotRequest
	lang       locale.Language
	timezone   string
	selection  selection.Set
	isAdmin    bool
	editMode   bool
	notice     string
	loading    bool
}

func NewController(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:      store,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
		viewerZone: slottime.DefaultZone,
		activeSlug: DefaultViewSlug,
		lang:       locale.Default,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.storage == nil {
		c.storage = NewMemoryStorage()
	}
	if c.clipboard == nil {
		c.clipboard = NoClipboard{}
	}
	if c.prompter == nil {
		c.prompter = WriterPrompter{}
	}
	if c.location == nil {
		c.location = &url.URL{}
	}
	if _, err := slottime.LoadZone(c.viewerZone); err != nil {
		c.viewerZone = slottime.DefaultZone
	}
	c.timezone = c.viewerZone
	c.mounted.Store(true)
	return c
}

// Close detaches the controller. Results of calls still in flight are
// discarded.
func (c *Controller) Close() {
	c.mounted.Store(false)
}

func (c *Controller) Mounted() bool {
	return c.mounted.Load()
}

func (c *Controller) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return logging.Scoped(ctx, c.logger, "component", "widget", operation, attrs...)
}

func (c *Controller) State() State {
	return State{
		Config:     c.config,
		Profiles:   append([]application.Profile(nil), c.profiles...),
		ActiveSlug: c.activeSlug,
		Slots:      append([]scheduler.Slot(nil), c.slots...),
		Requests:   append([]application.SlotRequest(nil), c.requests...),
		Language:   c.lang,
		Timezone:   c.timezone,
		Selected:   c.selection.IDs(),
		IsAdmin:    c.isAdmin,
		EditMode:   c.editMode,
		Notice:     c.notice,
		Loading:    c.loading,
	}
}

// Location returns the page URL with the current preferences applied.
func (c *Controller) Location() *url.URL {
	copied := *c.location
	return &copied
}

func (c *Controller) ClearNotice() {
	c.notice = ""
}

func (c *Controller) setNotice(key locale.Key) {
	c.notice = c.lang.Text(key)
}

// Load reads the preferences, fetches the configuration and the profiles and
// loads the slots of the active profile. Failures leave an empty surface.
func (c *Controller) Load(ctx context.Context) {
	prefs := ParsePreferences(c.location)

	c.lang = locale.Default
	if lang, ok := locale.Lookup(prefs.Language); ok {
		c.lang = lang
	} else if stored, found := c.storage.Get(StorageKeyLanguage); found {
		if lang, ok := locale.Lookup(stored); ok {
			c.lang = lang
		}
	}
	if _, err := slottime.LoadZone(prefs.Timezone); err == nil {
		c.timezone = prefs.Timezone
	}

	view := prefs.View
	if view == "" {
		view, _ = c.storage.Get(StorageKeyView)
	}
	if view != "" {
		c.activeSlug = view
	}

	c.loading = true
	defer func() {
		if c.Mounted() {
			c.loading = false
		}
	}()

	logger := c.log(ctx, "Load", "view", view)

	cfg, err := c.store.GetConfig(ctx)
	if !c.Mounted() {
		return
	}
	if err != nil {
		logger.WarnContext(ctx, "config load failed", "error", err)
		return
	}
	c.config = cfg

	profiles, err := c.store.GetProfiles(ctx, c.isAdmin)
	if !c.Mounted() {
		return
	}
	if err != nil {
		logger.WarnContext(ctx, "profile load failed", "error", err)
		return
	}
	c.profiles = profiles

	if active, ok := c.ActiveProfile(); ok {
		c.activeSlug = active.Slug
		if prefs.Timezone == "" && active.Timezone != "" {
			if _, err := slottime.LoadZone(active.Timezone); err == nil {
				c.timezone = active.Timezone
			}
		}
		if prefs.Language == "" {
			if lang, ok := locale.Lookup(active.DefaultLanguage); ok {
				c.lang = lang
			}
		}
		c.loadSlots(ctx, active.ID)
	}
	c.persistPreferences(ctx)
	logger.DebugContext(ctx, "widget loaded", "profile_count", len(c.profiles), "slot_count", len(c.slots))
}

// RestoreSession checks the stored admin credential and reloads the admin
// view when it is still valid.
func (c *Controller) RestoreSession(ctx context.Context) bool {
	ok, err := c.store.RestoreSession(ctx)
	if !c.Mounted() {
		return false
	}
	if err != nil {
		c.log(ctx, "RestoreSession").WarnContext(ctx, "session restore failed", "error", err)
	}
	c.isAdmin = ok
	if !ok {
		c.editMode = false
		c.requests = nil
		return false
	}
	c.reload(ctx)
	return true
}

// Login enables admin mode. A blank password is ignored. A wrong password
// reports false without an error and sets the login failed notice.
func (c *Controller) Login(ctx context.Context, password string) (bool, error) {
	if strings.TrimSpace(password) == "" {
		return false, nil
	}
	ok, err := c.store.LoginAdmin(ctx, password)
	if !c.Mounted() {
		return false, nil
	}
	if err != nil || !ok {
		c.setNotice(locale.KeyAdminLoginFailed)
		if err != nil {
			c.log(ctx, "Login").WarnContext(ctx, "admin login failed", "error", err)
		}
		return false, err
	}
	c.isAdmin = true
	c.editMode = false
	c.setNotice(locale.KeyAdminLoginSuccess)
	c.reload(ctx)
	return true, nil
}

// Logout leaves admin mode and reloads the public view. The local state is
// reset even when the store could not revoke the session.
func (c *Controller) Logout(ctx context.Context) error {
	err := c.store.Logout(ctx)
	if !c.Mounted() {
		return nil
	}
	if err != nil {
		c.log(ctx, "Logout").WarnContext(ctx, "session revoke failed", "error", err)
	}
	c.isAdmin = false
	c.editMode = false
	c.requests = nil
	c.reload(ctx)
	c.setNotice(locale.KeyAdminLoggedOut)
	return err
}

func (c *Controller) ChangePassword(ctx context.Context, current, next string) error {
	if err := c.store.ChangeAdminPassword(ctx, current, next); err != nil {
		if c.Mounted() {
			c.setNotice(locale.KeySaveFailed)
		}
		return err
	}
	if c.Mounted() {
		c.setNotice(locale.KeyPasswordChanged)
	}
	return nil
}

// SetEditMode toggles the slot editor. Only admins may edit.
func (c *Controller) SetEditMode(on bool) {
	c.editMode = on && c.isAdmin
}

// SelectView switches the active profile and loads its slots.
func (c *Controller) SelectView(ctx context.Context, slug string) {
	c.activeSlug = strings.TrimSpace(slug)
	if active, ok := c.ActiveProfile(); ok {
		c.loadSlots(ctx, active.ID)
	}
	c.persistPreferences(ctx)
}

func (c *Controller) SetLanguage(ctx context.Context, lang locale.Language) {
	c.lang = lang
	c.persistPreferences(ctx)
}

// SetTimezone changes the viewer zone. Unknown zones are refused.
func (c *Controller) SetTimezone(ctx context.Context, zone string) error {
	if _, err := slottime.LoadZone(zone); err != nil {
		return err
	}
	c.timezone = strings.TrimSpace(zone)
	c.persistPreferences(ctx)
	return nil
}

// ClickSlot opens the editor in edit mode and toggles the selection
// otherwise. The boolean reports whether the slot should be edited.
func (c *Controller) ClickSlot(slot scheduler.Slot) (scheduler.Slot, bool) {
	if c.editMode {
		return slot, true
	}
	c.selection.ToggleSlot(slot)
	return scheduler.Slot{}, false
}

func (c *Controller) ClearSelection() {
	c.selection.Clear()
}

// NewSlotDraft prepares a slot for the editor. dayIndex is the Monday based
// column and date the day picked for calendar profiles; a zero date means
// today. The boolean is false when no profile is active.
func (c *Controller) NewSlotDraft(dayIndex int, date scheduler.Date) (scheduler.Slot, bool) {
	active, ok := c.ActiveProfile()
	if !ok {
		return scheduler.Slot{}, false
	}

	dow := 1
	if dayIndex >= 0 && dayIndex <= 6 {
		dow = scheduler.DayOfWeekForIndex(dayIndex)
	}
	total, available, visible := 1, 1, true
	slot := scheduler.Slot{
		ID:             c.newID(),
		ProfileID:      active.ID,
		DayOfWeek:      dow,
		StartTime:      scheduler.MustTimeOfDay("10:00"),
		EndTime:        scheduler.MustTimeOfDay("11:00"),
		Status:         scheduler.StatusAvailable,
		SpotsTotal:     &total,
		SpotsAvailable: &available,
		Label:          c.lang.Text(locale.KeyNewSlotLabel),
		Visibility:     &visible,
	}
	if active.Mode == scheduler.ModeCalendar {
		if date.IsZero() {
			date = scheduler.DateOf(c.now().In(c.viewLocation()))
		}
		slot.Date = date
		slot.SyncDayOfWeek()
	}
	return slot, true
}

// SaveSlot stores slot under the active profile and reloads the slots.
func (c *Controller) SaveSlot(ctx context.Context, slot scheduler.Slot) (scheduler.Slot, error) {
	active, ok := c.ActiveProfile()
	if !ok {
		return scheduler.Slot{}, fmt.Errorf("save slot: %w", application.ErrNotFound)
	}
	slot.ProfileID = active.ID
	slot.SyncDayOfWeek()

	saved, err := c.store.SaveSlot(ctx, slot)
	if !c.Mounted() {
		return saved, err
	}
	if err != nil {
		c.setNotice(locale.KeySaveFailed)
		c.log(ctx, "SaveSlot", "slot_id", slot.ID).WarnContext(ctx, "slot save failed", "error", err)
		return scheduler.Slot{}, err
	}
	c.loadSlots(ctx, active.ID)
	return saved, nil
}

// DuplicateSlot saves a copy of slot under a new id.
func (c *Controller) DuplicateSlot(ctx context.Context, slot scheduler.Slot) (scheduler.Slot, error) {
	clone := slot
	clone.ID = c.newID()
	clone.Label = slot.Label + " (Copy)"
	return c.SaveSlot(ctx, clone)
}

func (c *Controller) DeleteSlot(ctx context.Context, id string) error {
	err := c.store.DeleteSlot(ctx, id)
	if !c.Mounted() {
		return err
	}
	if err != nil {
		c.setNotice(locale.KeySaveFailed)
		return err
	}
	if active, ok := c.ActiveProfile(); ok {
		c.loadSlots(ctx, active.ID)
	}
	return nil
}

// SaveProfile normalizes the slug and title of draft, stores it and makes it
// the active view. A draft whose slug and title slugify to nothing is
// ignored and the zero profile is returned.
func (c *Controller) SaveProfile(ctx context.Context, draft application.Profile) (application.Profile, error) {
	slugSource := draft.Slug
	if strings.TrimSpace(slugSource) == "" {
		slugSource = draft.Title
	}
	slug := application.Slugify(slugSource)
	if slug == "" {
		return application.Profile{}, nil
	}
	draft.Slug = slug
	draft.Title = strings.TrimSpace(draft.Title)
	if draft.Title == "" {
		draft.Title = c.lang.Text(locale.KeyDefaultTitle)
	}
	if draft.Mode != scheduler.ModeCalendar {
		draft.Mode = scheduler.ModeWeekly
	}

	saved, err := c.store.SaveProfile(ctx, draft)
	if !c.Mounted() {
		return saved, err
	}
	if err != nil {
		c.setNotice(locale.KeySaveFailed)
		c.log(ctx, "SaveProfile", "slug", slug).WarnContext(ctx, "profile save failed", "error", err)
		return application.Profile{}, err
	}

	c.loadProfiles(ctx)
	c.activeSlug = saved.Slug
	c.loadSlots(ctx, saved.ID)
	c.persistPreferences(ctx)
	return saved, nil
}

// DeleteActiveProfile removes the active profile and activates the first
// remaining one.
func (c *Controller) DeleteActiveProfile(ctx context.Context) error {
	active, ok := c.ActiveProfile()
	if !ok {
		return nil
	}
	err := c.store.DeleteProfile(ctx, active.ID)
	if !c.Mounted() {
		return err
	}
	if err != nil {
		c.setNotice(locale.KeySaveFailed)
		return err
	}

	c.loadProfiles(ctx)
	c.activeSlug = DefaultViewSlug
	c.slots = nil
	if len(c.profiles) > 0 {
		c.activeSlug = c.profiles[0].Slug
		c.loadSlots(ctx, c.profiles[0].ID)
	}
	c.persistPreferences(ctx)
	return nil
}

// SubmitJoinRequest sends a viewer's request to join slotID.
func (c *Controller) SubmitJoinRequest(ctx context.Context, slotID string, contact application.Contact) (application.SlotRequest, error) {
	request, err := c.store.SubmitSlotRequest(ctx, slotID, contact)
	if !c.Mounted() {
		return request, err
	}
	if err != nil {
		c.setNotice(locale.KeyJoinFailed)
		c.log(ctx, "SubmitJoinRequest", "slot_id", slotID).WarnContext(ctx, "join request failed", "error", err, "error_kind", application.ErrorKind(err))
		return application.SlotRequest{}, err
	}
	c.setNotice(locale.KeyJoinSubmitted)
	if c.isAdmin {
		c.loadRequests(ctx)
	}
	return request, nil
}

func (c *Controller) ReviewRequest(ctx context.Context, id string, status application.RequestStatus, adminNote string) (application.SlotRequest, error) {
	request, err := c.store.ReviewSlotRequest(ctx, id, status, adminNote)
	if !c.Mounted() {
		return request, err
	}
	if err != nil {
		c.setNotice(locale.KeySaveFailed)
		return application.SlotRequest{}, err
	}
	switch status {
	case application.RequestApproved:
		c.setNotice(locale.KeyRequestApproved)
	case application.RequestRejected:
		c.setNotice(locale.KeyRequestRejected)
	case application.RequestPending:
		c.setNotice(locale.KeyRequestUpdated)
	}
	c.loadRequests(ctx)
	return request, nil
}

func (c *Controller) UpdateRequest(ctx context.Context, id string, contact application.Contact) (application.SlotRequest, error) {
	request, err := c.store.UpdateSlotRequest(ctx, id, contact)
	if !c.Mounted() {
		return request, err
	}
	if err != nil {
		c.setNotice(locale.KeySaveFailed)
		return application.SlotRequest{}, err
	}
	c.setNotice(locale.KeyRequestUpdated)
	c.loadRequests(ctx)
	return request, nil
}

func (c *Controller) DeleteRequest(ctx context.Context, id string) error {
	err := c.store.DeleteSlotRequest(ctx, id)
	if !c.Mounted() {
		return err
	}
	if err != nil {
		c.setNotice(locale.KeySaveFailed)
		return err
	}
	c.setNotice(locale.KeyRequestDeleted)
	c.loadRequests(ctx)
	return nil
}

// FilteredRequests narrows the loaded requests to the active profile, the
// given status (empty for all) and a case insensitive free text query over
// the contact fields and the slot label.
func (c *Controller) FilteredRequests(status application.RequestStatus, query string) []application.SlotRequest {
	active, hasActive := c.ActiveProfile()
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]application.SlotRequest, 0, len(c.requests))
	for _, r := range c.requests {
		if hasActive && r.ProfileID != active.ID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		if q != "" && !strings.Contains(requestHaystack(r), q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func requestHaystack(r application.SlotRequest) string {
	parts := []string{r.Contact.Name, r.Contact.Value, r.Contact.Class, r.Contact.Note}
	if r.Snapshot != nil {
		parts = append(parts, r.Snapshot.Label)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// CopyMessage copies the booking request for the current selection and
// returns it. When the clipboard fails the text is handed to the prompter.
func (c *Controller) CopyMessage(ctx context.Context) string {
	msg := c.Message()
	c.copy(ctx, msg, locale.KeyCopied)
	return msg
}

// CopyShareLink copies a link that reopens the widget on the active view with
// the current language and zone.
func (c *Controller) CopyShareLink(ctx context.Context) string {
	link := c.ShareLink().String()
	c.copy(ctx, link, locale.KeyLinkCopied)
	return link
}

func (c *Controller) ShareLink() *url.URL {
	prefs := Preferences{Language: c.lang.Code(), Timezone: c.timezone}
	if active, ok := c.ActiveProfile(); ok {
		prefs.View = active.Slug
	}
	return WithPreferences(c.location, prefs)
}

func (c *Controller) copy(ctx context.Context, text string, success locale.Key) {
	if err := c.clipboard.WriteText(ctx, text); err != nil {
		if !errors.Is(err, ErrClipboardUnavailable) {
			c.log(ctx, "Copy").DebugContext(ctx, "clipboard write failed", "error", err)
		}
		c.prompter.Prompt(c.lang.Text(locale.KeyCopyFallback), text)
		return
	}
	c.setNotice(success)
}

func (c *Controller) reload(ctx context.Context) {
	c.loadProfiles(ctx)
	if active, ok := c.ActiveProfile(); ok {
		c.activeSlug = active.Slug
		c.loadSlots(ctx, active.ID)
	} else {
		c.slots = nil
	}
	c.loadRequests(ctx)
}

func (c *Controller) loadProfiles(ctx context.Context) {
	profiles, err := c.store.GetProfiles(ctx, c.isAdmin)
	if !c.Mounted() {
		return
	}
	if err != nil {
		c.log(ctx, "loadProfiles", "as_admin", c.isAdmin).WarnContext(ctx, "profile load failed", "error", err)
		return
	}
	c.profiles = profiles
}

func (c *Controller) loadSlots(ctx context.Context, profileID string) {
	slots, err := c.store.GetSlots(ctx, profileID, c.isAdmin)
	if !c.Mounted() {
		return
	}
	if err != nil {
		c.log(ctx, "loadSlots", "profile_id", profileID).WarnContext(ctx, "slot load failed", "error", err)
		return
	}
	c.slots = slots
}

func (c *Controller) loadRequests(ctx context.Context) {
	if !c.isAdmin {
		c.requests = nil
		return
	}
	requests, err := c.store.GetSlotRequests(ctx, application.RequestFilter{})
	if !c.Mounted() {
		return
	}
	if err != nil {
		c.log(ctx, "loadRequests").WarnContext(ctx, "slot request load failed", "error", err)
		return
	}
	c.requests = requests
}

func (c *Controller) persistPreferences(ctx context.Context) {
	view := c.activeSlug
	if active, ok := c.ActiveProfile(); ok {
		view = active.Slug
	}
	if err := c.storage.Set(StorageKeyLanguage, c.lang.Code()); err != nil {
		c.log(ctx, "persistPreferences").DebugContext(ctx, "language not stored", "error", err)
	}
	if err := c.storage.Set(StorageKeyView, c.activeSlug); err != nil {
		c.log(ctx, "persistPreferences").DebugContext(ctx, "view not stored", "error", err)
	}
	c.location = WithPreferences(c.location, Preferences{Language: c.lang.Code(), Timezone: c.timezone, View: view})
}
