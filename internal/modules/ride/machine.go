// README: Ride state machine owns the booking session, its timers and its async lookups.
package ride

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"goride/internal/ai"
	"goride/internal/modules/driver"
	"goride/internal/modules/location"
	"goride/internal/modules/pricing"
	"goride/internal/observability"
	"goride/internal/platform/clock"
	"goride/internal/types"
)

var (
	ErrInvalidState   = errors.New("invalid state transition")
	ErrBadRequest     = errors.New("bad request")
	ErrNotReady       = errors.New("action not available yet")
	ErrUnknownVehicle = errors.New("vehicle not in catalog")
	ErrClosed         = errors.New("session closed")
)

// CatalogLoader prices a trip between two named places. It must not fail.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, pickup, dropoff string) []pricing.VehicleOption
}

type Timings struct {
	Debounce      time.Duration
	DispatchDelay time.Duration
	Tick          time.Duration
	OracleTimeout time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		Debounce:      location.DefaultDebounce,
		DispatchDelay: 3500 * time.Millisecond,
		Tick:          time.Second,
		OracleTimeout: 10 * time.Second,
	}
}

type session struct {
	stage        Stage
	userName     string
	userCoords   types.Point
	coordsSet    bool
	pickup       *location.Location
	dropoff      *location.Location
	pickupQuery  string
	dropoffQuery string
	activeField  location.Field
	suggestions  []string
	vehicles     []pricing.VehicleOption
	loadingFares bool
	selected     *pricing.VehicleOption
	payment      PaymentMethod
	sim          *driver.Simulator
}

// Machine is the single booking session. Intents are serialized by mu;
// oracle lookups run on goroutines and land only if still relevant.
type Machine struct {
	resolver *location.Resolver
	catalog  CatalogLoader
	clock    clock.Clock
	timings  Timings
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	s        session
	rng      *rand.Rand
	closed   bool
	version  uint64
	debounce *location.Debouncer

	// Relevance counters: an async result applies only if its counter is unchanged.
	searchSeq   uint64
	fareSeq     uint64
	dispatchSeq uint64
	slotVersion map[location.Field]uint64

	dispatch clock.Timer
	ticker   clock.Timer

	subs    map[int]chan Snapshot
	nextSub int
}

func NewMachine(resolver *location.Resolver, catalog CatalogLoader, clk clock.Clock, rng *rand.Rand, timings Timings, log *slog.Logger) *Machine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Machine{
		resolver:    resolver,
		catalog:     catalog,
		clock:       clk,
		timings:     timings,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
		rng:         rng,
		debounce:    location.NewDebouncer(clk, timings.Debounce),
		slotVersion: map[location.Field]uint64{},
		subs:        map[int]chan Snapshot{},
		s: session{
			stage:      StageLogin,
			userCoords: location.DefaultPosition,
			payment:    PaymentUPI,
		},
	}
}

// InitLocation records the device position once per run, falling back to
// the default position when the device has no fix.
func (m *Machine) InitLocation(ctx context.Context, g location.Geolocator) types.Point {
	at := m.resolver.ResolveDevice(ctx, g)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s.coordsSet {
		return m.s.userCoords
	}
	m.s.userCoords = at
	m.s.coordsSet = true
	m.publish()
	return at
}

// Login accepts any non-empty credentials and derives the display name from
// the local part of the email.
func (m *Machine) Login(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrBadRequest
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(StageLogin); err != nil {
		return err
	}
	m.s.userName = displayName(email)
	m.transition(StageLocationSelect)
	m.publish()
	return nil
}

func displayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	r, size := utf8.DecodeRuneInString(local)
	if r == utf8.RuneError {
		return local
	}
	return string(unicode.ToUpper(r)) + local[size:]
}

// UseCurrentLocation sets pickup to the device position.
func (m *Machine) UseCurrentLocation() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(StageLocationSelect); err != nil {
		return err
	}
	loc := location.CurrentLocation(m.s.userCoords)
	m.assign(location.FieldPickup, loc)
	m.clearSuggestions()
	m.s.activeField = location.FieldNone
	m.publish()
	return nil
}

// SetSearchText records typed text for a field, focuses it and schedules a
// debounced suggestion search.
func (m *Machine) SetSearchText(field location.Field, text string) error {
	if !field.Valid() {
		return ErrBadRequest
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(StageLocationSelect); err != nil {
		return err
	}
	m.setQuery(field, text)
	// Typing supersedes any reverse geocode still pending for this field.
	m.bumpSlot(field)
	m.s.activeField = field
	m.scheduleSearch()
	m.publish()
	return nil
}

// FocusField marks which field is being edited. FieldNone blurs.
func (m *Machine) FocusField(field location.Field) error {
	if field != location.FieldNone && !field.Valid() {
		return ErrBadRequest
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(StageLocationSelect); err != nil {
		return err
	}
	if m.s.activeField == field {
		return nil
	}
	m.s.activeField = field
	m.scheduleSearch()
	m.publish()
	return nil
}

// MapTapped writes a placeholder to the inferred field at once and replaces
// it with the reverse-geocoded address when that arrives, unless the field
// was reassigned in between.
func (m *Machine) MapTapped(at types.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(StageLocationSelect); err != nil {
		return err
	}

	field := location.TargetField(m.s.activeField, m.s.pickup != nil)
	m.s.activeField = location.FieldNone
	m.clearSuggestions()
	version := m.assign(field, location.Placeholder(at))
	m.publish()

	ctx, cancel := m.oracleContext()
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()
		loc := m.resolver.ResolveTap(ctx, at)

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed || m.slotVersion[field] != version {
			m.log.Debug("discarding stale address", "field", field, "address", loc.Name)
			return
		}
		m.assign(field, loc)
		m.publish()
	}()
	return nil
}

// SelectSuggestion assigns a suggestion to the focused field, or to dropoff
// when nothing is focused.
func (m *Machine) SelectSuggestion(address string) error {
	if strings.TrimSpace(address) == "" {
		return ErrBadRequest
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(StageLocationSelect); err != nil {
		return err
	}
	field := m.s.activeField
	if !field.Valid() {
		field = location.FieldDropoff
	}
	m.assign(field, m.resolver.FromSelection(address, m.s.userCoords))
	m.clearSuggestions()
	m.s.activeField = location.FieldNone
	m.publish()
	return nil
}

// FindRides advances to vehicle selection with an empty catalog and loads
// fares in the background.
func (m *Machine) FindRides() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(StageLocationSelect); err != nil {
		return err
	}
	if !m.canFindRides() {
		return ErrNotReady
	}

	m.clearSuggestions()
	m.s.activeField = location.FieldNone
	m.s.vehicles = []pricing.VehicleOption{}
	m.s.selected = nil
	m.s.loadingFares = true
	m.transition(StageVehicleSelect)
	m.fareSeq++
	seq := m.fareSeq
	pickup, dropoff := m.s.pickup.Name, m.s.dropoff.Name
	m.publish()

	ctx, cancel := m.oracleContext()
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()
		vehicles := m.catalog.LoadCatalog(ctx, pickup, dropoff)

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed || m.fareSeq != seq {
			return
		}
		m.s.vehicles = vehicles
		m.s.loadingFares = false
		m.publish()
	}()
	return nil
}

func (m *Machine) SelectVehicle(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(StageVehicleSelect); err != nil {
		return err
	}
	for _, v := range m.s.vehicles {
		if v.ID == id {
			m.s.selected = &v
			m.publish()
			return nil
		}
	}
	return ErrUnknownVehicle
}

func (m *Machine) ProceedToPayment() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(StageVehicleSelect); err != nil {
		return err
	}
	if m.s.selected == nil {
		return ErrNotReady
	}
	m.transition(StagePayment)
	m.publish()
	return nil
}

func (m *Machine) SetPaymentMethod(method PaymentMethod) error {
	if !method.Valid() {
		return ErrBadRequest
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(StagePayment); err != nil {
		return err
	}
	m.s.payment = method
	m.publish()
	return nil
}

// ConfirmPayment starts the simulated driver search. The ride becomes active
// after the dispatch delay; the search cannot be cancelled.
func (m *Machine) ConfirmPayment() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(StagePayment); err != nil {
		return err
	}
	m.transition(StageSearchingDriver)
	m.stopDispatch()
	m.dispatchSeq++
	seq := m.dispatchSeq
	m.dispatch = m.clock.AfterFunc(m.timings.DispatchDelay, func() { m.driverFound(seq) })
	m.publish()
	return nil
}

func (m *Machine) driverFound(seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || seq != m.dispatchSeq || m.s.stage != StageSearchingDriver {
		return
	}
	m.dispatch = nil
	if m.s.selected == nil || m.s.pickup == nil {
		m.log.Error("dispatch without vehicle or pickup")
		return
	}

	m.stopTicker()
	target := m.s.pickup.Coords
	m.s.sim = driver.NewSimulator(driver.SpawnNear(target, m.rng), target, m.s.selected.ETAMinutes)
	m.transition(StageRideActive)
	observability.ActiveRides.Inc()
	m.ticker = m.clock.Every(m.timings.Tick, func() { m.tick(seq) })
	m.publish()
}

func (m *Machine) tick(seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || seq != m.dispatchSeq || m.s.stage != StageRideActive || m.s.sim == nil {
		return
	}
	if m.s.sim.Step() {
		m.stopTicker()
	}
	m.publish()
}

// CancelRide ends the active ride and resets the booking, keeping the user
// name and device position.
func (m *Machine) CancelRide() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(StageRideActive); err != nil {
		return err
	}
	m.endRide()
	m.transition(StageLocationSelect)
	m.bumpSlot(location.FieldPickup)
	m.bumpSlot(location.FieldDropoff)
	m.s.pickup, m.s.dropoff = nil, nil
	m.s.pickupQuery, m.s.dropoffQuery = "", ""
	m.s.activeField = location.FieldNone
	m.clearSuggestions()
	m.s.vehicles = nil
	m.s.loadingFares = false
	m.s.selected = nil
	m.publish()
	return nil
}

// NavigateBack steps back from vehicle selection or payment, keeping
// everything entered so far.
func (m *Machine) NavigateBack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	switch m.s.stage {
	case StageVehicleSelect:
		m.fareSeq++
		m.s.loadingFares = false
		m.transition(StageLocationSelect)
	case StagePayment:
		m.transition(StageVehicleSelect)
	default:
		return ErrInvalidState
	}
	m.publish()
	return nil
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// Subscribe returns a channel carrying the latest snapshot after every
// change. Slow readers skip intermediate snapshots. The channel is closed by
// the returned cancel func or by Close.
func (m *Machine) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan Snapshot, 1)
	if m.closed {
		close(ch)
		return ch, func() {}
	}
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- m.snapshot()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if _, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(ch)
			}
		})
	}
}

// Wait blocks until every in-flight oracle lookup has landed or been discarded.
func (m *Machine) Wait() {
	m.wg.Wait()
}

// Close stops all timers, cancels outstanding lookups and closes subscriptions.
func (m *Machine) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.debounce.Stop()
	m.stopDispatch()
	if m.s.stage == StageRideActive {
		m.endRide()
	}
	for id, ch := range m.subs {
		close(ch)
		delete(m.subs, id)
	}
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
}

// scheduleSearch runs the suggestion search for the focused field after the
// debounce window, or clears suggestions when the query may not be searched.
func (m *Machine) scheduleSearch() {
	m.searchSeq++
	field := m.s.activeField
	query := m.query(field)
	if !location.SuggestionsAllowed(field, query) {
		m.debounce.Stop()
		m.s.suggestions = []string{}
		return
	}
	seq := m.searchSeq
	m.debounce.Trigger(func() { m.search(seq, field, query) })
}

func (m *Machine) search(seq uint64, field location.Field, query string) {
	m.mu.Lock()
	if m.closed || seq != m.searchSeq {
		m.mu.Unlock()
		return
	}
	near := m.s.userCoords
	ctx, cancel := m.oracleContext()
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer cancel()
		results := m.resolver.Suggest(ctx, query, near)

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed || seq != m.searchSeq {
			m.log.Debug("discarding stale suggestions", "field", field, "query", query)
			return
		}
		m.s.suggestions = results
		m.publish()
	}()
}

// The helpers below expect mu to be held.

func (m *Machine) check(want Stage) error {
	if m.closed {
		return ErrClosed
	}
	if m.s.stage != want {
		return ErrInvalidState
	}
	return nil
}

func (m *Machine) transition(to Stage) {
	from := m.s.stage
	if !CanTransition(from, to) {
		// Callers check the stage first; reaching this is a programming error.
		panic("ride: illegal transition " + string(from) + " -> " + string(to))
	}
	m.s.stage = to
	observability.StageTransitions.WithLabelValues(string(from), string(to)).Inc()
	m.log.Info("stage transition", "from", from, "to", to, "user", m.s.userName)
}

// assign replaces a slot wholesale and returns its new version.
func (m *Machine) assign(field location.Field, loc location.Location) uint64 {
	switch field {
	case location.FieldPickup:
		m.s.pickup = &loc
	case location.FieldDropoff:
		m.s.dropoff = &loc
	}
	m.setQuery(field, loc.Name)
	return m.bumpSlot(field)
}

func (m *Machine) bumpSlot(field location.Field) uint64 {
	m.slotVersion[field]++
	return m.slotVersion[field]
}

func (m *Machine) setQuery(field location.Field, text string) {
	switch field {
	case location.FieldPickup:
		m.s.pickupQuery = text
	case location.FieldDropoff:
		m.s.dropoffQuery = text
	}
}

func (m *Machine) query(field location.Field) string {
	switch field {
	case location.FieldPickup:
		return m.s.pickupQuery
	case location.FieldDropoff:
		return m.s.dropoffQuery
	}
	return ""
}

func (m *Machine) clearSuggestions() {
	m.searchSeq++
	m.debounce.Stop()
	m.s.suggestions = []string{}
}

// canFindRides requires both slots to be set and neither to be waiting on a
// reverse geocode.
func (m *Machine) canFindRides() bool {
	return m.s.stage == StageLocationSelect && resolved(m.s.pickup) && resolved(m.s.dropoff)
}

func resolved(loc *location.Location) bool {
	return loc != nil && loc.Name != location.FetchingAddressName
}

func (m *Machine) endRide() {
	m.stopTicker()
	m.stopDispatch()
	m.dispatchSeq++
	if m.s.sim != nil {
		m.s.sim = nil
		observability.ActiveRides.Dec()
	}
}

func (m *Machine) stopTicker() {
	if m.ticker != nil {
		m.ticker.Stop()
		m.ticker = nil
	}
}

func (m *Machine) stopDispatch() {
	if m.dispatch != nil {
		m.dispatch.Stop()
		m.dispatch = nil
	}
}

func (m *Machine) oracleContext() (context.Context, context.CancelFunc) {
	ctx := ai.WithCaller(m.ctx, m.s.userName)
	if m.timings.OracleTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timings.OracleTimeout)
}

func (m *Machine) publish() {
	m.version++
	if len(m.subs) == 0 {
		return
	}
	snap := m.snapshot()
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (m *Machine) snapshot() Snapshot {
	s := m.s
	out := Snapshot{
		Stage:         s.stage,
		UserName:      s.userName,
		UserCoords:    s.userCoords,
		PickupQuery:   s.pickupQuery,
		DropoffQuery:  s.dropoffQuery,
		ActiveField:   s.activeField,
		Suggestions:   append([]string{}, s.suggestions...),
		Vehicles:      append([]pricing.VehicleOption{}, s.vehicles...),
		LoadingFares:  s.loadingFares,
		PaymentMethod: s.payment,
		CanFindRides:  m.canFindRides(),
		CanProceed:    s.stage == StageVehicleSelect && s.selected != nil,
		Version:       m.version,
	}
	if s.pickup != nil {
		p := *s.pickup
		out.Pickup = &p
	}
	if s.dropoff != nil {
		d := *s.dropoff
		out.Dropoff = &d
	}
	if s.selected != nil {
		v := *s.selected
		out.SelectedVehicle = &v
	}
	if s.sim != nil {
		pos := s.sim.Position()
		out.DriverPosition = &pos
		out.RideETASeconds = s.sim.ETASeconds()
		out.ETALabel = driver.FormatETA(out.RideETASeconds)
		out.DriverDistance = location.DistanceKm(pos, s.sim.Target())
	}
	return out
}
