package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/storefront-chat/internal/domain/constants"
	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/domain/repository"
	"github.com/yourusername/storefront-chat/internal/metrics"
	"github.com/yourusername/storefront-chat/pkg/logger"
)

const cartSyncTimeout = 10 * time.Second

var (
	orderConfirmPhrases = []string{
		"đặt hàng thành công",
		"đơn hàng của bạn đã được đặt",
		"đơn hàng của bạn đã được xác nhận",
		"đơn hàng của bạn đã được tạo",
		"đã được đặt thành công",
		"cảm ơn bạn đã đặt hàng",
		"đơn hàng đã được tạo",
	}
	cartClearedPhrases = []string{
		"giỏ hàng đã được xóa",
		"đã xóa giỏ hàng",
		"giỏ hàng của bạn đã được làm trống",
	}
	negationWords = map[string]bool{"chua": true, "khong": true}
)

// ImagePatch is a late image lookup result, applied by item identity.
type ImagePatch struct {
	Kind     entity.ItemKind
	ItemID   string
	ImageRef string
}

// CartDeps are the collaborators of a CartReconciler. Any of them may be nil.
type CartDeps struct {
	Device  repository.DeviceStore
	Server  repository.CartStore
	Catalog repository.CatalogSource
	Index   *CatalogIndex
	Metrics *metrics.Collector
}

// CartReconciler owns ClientCart and keeps it consistent with the server copy and
// the carts reported by the assistant. Local state is always the source of truth.
type CartReconciler struct {
	deps     CartDeps
	deviceID string
	userID   string

	mu    sync.Mutex
	state entity.CartState

	syncMu  sync.Mutex
	version uint64
	synced  uint64

	onPatch func(ImagePatch)
	wg      sync.WaitGroup
}

// NewCartReconciler creates a reconciler for one device and user identity.
func NewCartReconciler(deps CartDeps, deviceID, userID string) *CartReconciler {
	return &CartReconciler{deps: deps, deviceID: deviceID, userID: userID}
}

// OnImagePatch registers a listener called after each applied image patch.
func (r *CartReconciler) OnImagePatch(fn func(ImagePatch)) {
	r.mu.Lock()
	r.onPatch = fn
	r.mu.Unlock()
}

// Load restores ClientCart from the device store. An empty device cart falls back
// to the ServerCart copy for the user, which is then written to the device.
func (r *CartReconciler) Load(ctx context.Context) error {
	var cart entity.CartState
	if r.deps.Device != nil {
		stored, err := r.deps.Device.LoadCart(ctx, r.deviceID)
		if err != nil {
			return err
		}
		cart = stored
	}
	cart = normalizeLines(cart)

	fromServer := false
	if len(cart.Lines) == 0 && r.deps.Server != nil && r.userID != "" {
		remote, err := r.deps.Server.Load(ctx, r.userID)
		switch {
		case err != nil:
			logger.WarnLogger.Printf("⚠️ Server savatchasi o'qilmadi user=%s: %v", r.userID, err)
		case len(remote.Lines) > 0:
			cart = normalizeLines(remote)
			fromServer = len(cart.Lines) > 0
		}
	}

	r.mu.Lock()
	r.state = cart
	snapshot := r.state.Clone()
	r.mu.Unlock()

	if fromServer {
		logger.InfoLogger.Printf("🛒 Savatcha serverdan tiklandi user=%s: %d ta qator", r.userID, len(snapshot.Lines))
		r.persistLocal(ctx, snapshot)
	}
	r.backfillImages(snapshot)
	return nil
}

// Snapshot returns a copy of the current cart.
func (r *CartReconciler) Snapshot() entity.CartState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// ReplaceFromAgent replaces the whole cart with the assistant-reported one. The
// result is persisted locally only; the assistant already owns the server copy.
func (r *CartReconciler) ReplaceFromAgent(ctx context.Context, cart entity.CartState) entity.CartState {
	next := normalizeLines(cart)

	r.mu.Lock()
	r.state = next
	snapshot := r.state.Clone()
	r.mu.Unlock()

	r.deps.Metrics.CartReplaced()
	r.persistLocal(ctx, snapshot)
	r.backfillImages(snapshot)
	return snapshot
}

// Add puts quantity units of item into the cart.
func (r *CartReconciler) Add(ctx context.Context, item entity.CatalogItem, quantity int) entity.CartState {
	if quantity < 1 || item.ID == "" {
		return r.Snapshot()
	}
	if item.Kind == "" {
		item.Kind = entity.KindProduct
	}
	return r.mutate(ctx, func(s *entity.CartState) {
		for i := range s.Lines {
			if s.Lines[i].SameItem(item.Kind, item.ID) {
				s.Lines[i].Quantity += quantity
				return
			}
		}
		s.Lines = append(s.Lines, entity.CartLine{
			ItemID:   item.ID,
			Kind:     item.Kind,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: quantity,
			ImageRef: item.ImageRef,
		})
	})
}

// SetQuantity sets a line's quantity; zero or less removes the line.
func (r *CartReconciler) SetQuantity(ctx context.Context, kind entity.ItemKind, itemID string, quantity int) entity.CartState {
	return r.mutate(ctx, func(s *entity.CartState) {
		for i := range s.Lines {
			if !s.Lines[i].SameItem(kind, itemID) {
				continue
			}
			if quantity <= 0 {
				s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
			} else {
				s.Lines[i].Quantity = quantity
			}
			return
		}
	})
}

// Remove deletes a line.
func (r *CartReconciler) Remove(ctx context.Context, kind entity.ItemKind, itemID string) entity.CartState {
	return r.SetQuantity(ctx, kind, itemID, 0)
}

// Clear empties the cart.
func (r *CartReconciler) Clear(ctx context.Context) entity.CartState {
	return r.mutate(ctx, func(s *entity.CartState) {
		s.Lines = nil
		s.DisplayTotal = ""
	})
}

// ClearAfterOrder empties the cart once an order went through.
func (r *CartReconciler) ClearAfterOrder(ctx context.Context) {
	r.Clear(ctx)
	logger.InfoLogger.Printf("🧹 Buyurtmadan so'ng savatcha tozalandi (user=%s)", r.userID)
}

func (r *CartReconciler) mutate(ctx context.Context, fn func(s *entity.CartState)) entity.CartState {
	r.mu.Lock()
	fn(&r.state)
	r.state.DisplayTotal = ""
	snapshot := r.state.Clone()
	r.mu.Unlock()

	r.persistLocal(ctx, snapshot)
	r.syncServer(snapshot)
	return snapshot
}

func (r *CartReconciler) persistLocal(ctx context.Context, snapshot entity.CartState) {
	if r.deps.Device == nil {
		return
	}
	if err := r.deps.Device.SaveCart(ctx, r.deviceID, snapshot); err != nil {
		logger.WarnLogger.Printf("⚠️ Savatchani qurilmaga saqlab bo'lmadi: %v", err)
	}
}

// syncServer writes the snapshot to ServerCart in the background. A write older
// than one already stored is skipped.
func (r *CartReconciler) syncServer(snapshot entity.CartState) {
	if r.deps.Server == nil || r.userID == "" {
		return
	}
	r.syncMu.Lock()
	r.version++
	v := r.version
	r.syncMu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.syncMu.Lock()
		defer r.syncMu.Unlock()
		if v < r.synced {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), cartSyncTimeout)
		defer cancel()

		var err error
		if len(snapshot.Lines) == 0 {
			err = r.deps.Server.Clear(ctx, r.userID)
		} else {
			err = r.deps.Server.Save(ctx, r.userID, snapshot)
		}
		if err != nil {
			logger.WarnLogger.Printf("⚠️ Server savatchasi sinxronlanmadi (user=%s): %v", r.userID, err)
			return
		}
		r.synced = v
	}()
}

// backfillImages fills missing images from the index first and then, for what is
// still missing, from the catalog in the background.
func (r *CartReconciler) backfillImages(snapshot entity.CartState) {
	var missing []entity.CartLine
	for _, line := range snapshot.Lines {
		if line.ImageRef != "" {
			continue
		}
		if item, ok := r.deps.Index.ByID(line.Kind, line.ItemID); ok && item.ImageRef != "" {
			r.ApplyImagePatch(ImagePatch{Kind: line.Kind, ItemID: line.ItemID, ImageRef: item.ImageRef})
			continue
		}
		missing = append(missing, line)
	}
	if len(missing) == 0 || r.deps.Catalog == nil {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(constants.EnrichmentConcurrency)
		for _, line := range missing {
			g.Go(func() error {
				item, err := r.deps.Catalog.FetchByID(ctx, line.Kind, line.ItemID)
				if err != nil || item == nil || item.ImageRef == "" {
					r.deps.Metrics.ImagePatch("failed")
					if err != nil {
						logger.WarnLogger.Printf("⚠️ Rasm topilmadi (%s/%s): %v", line.Kind, line.ItemID, err)
					}
					return nil
				}
				r.deps.Index.PatchImage(line.Kind, line.ItemID, item.ImageRef)
				r.ApplyImagePatch(ImagePatch{Kind: line.Kind, ItemID: line.ItemID, ImageRef: item.ImageRef})
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// ApplyImagePatch sets the image on the matching line. Patches for lines that are
// gone are dropped.
func (r *CartReconciler) ApplyImagePatch(p ImagePatch) bool {
	r.mu.Lock()
	applied := false
	for i := range r.state.Lines {
		if r.state.Lines[i].SameItem(p.Kind, p.ItemID) {
			r.state.Lines[i].ImageRef = p.ImageRef
			applied = true
			break
		}
	}
	onPatch := r.onPatch
	r.mu.Unlock()

	if !applied {
		r.deps.Metrics.ImagePatch("stale")
		return false
	}
	r.deps.Metrics.ImagePatch("applied")
	if onPatch != nil {
		onPatch(p)
	}
	return true
}

// Wait blocks until background syncs and image lookups have finished.
func (r *CartReconciler) Wait() {
	r.wg.Wait()
}

// normalizeLines folds duplicate items and drops unusable lines.
func normalizeLines(cart entity.CartState) entity.CartState {
	out := entity.CartState{DisplayTotal: cart.DisplayTotal}
	pos := make(map[itemRef]int)
	for _, line := range cart.Lines {
		if line.ItemID == "" || line.Quantity < 1 {
			continue
		}
		if line.Kind == "" {
			line.Kind = entity.KindProduct
		}
		ref := itemRef{kind: line.Kind, id: line.ItemID}
		if i, ok := pos[ref]; ok {
			out.Lines[i].Quantity += line.Quantity
			if out.Lines[i].ImageRef == "" {
				out.Lines[i].ImageRef = line.ImageRef
			}
			continue
		}
		pos[ref] = len(out.Lines)
		out.Lines = append(out.Lines, line)
	}
	return out
}

// DetectOrderSuccess reports whether a reply confirms a placed order or an emptied cart.
func DetectOrderSuccess(reply entity.ChatReply) bool {
	if reply.Order != nil && strings.TrimSpace(reply.Order.OrderCode) != "" {
		return true
	}
	text := NormalizeKey(reply.Text)
	if text == "" {
		return false
	}
	for _, group := range [][]string{orderConfirmPhrases, cartClearedPhrases} {
		for _, phrase := range group {
			if containsAffirmed(text, NormalizeKey(phrase)) {
				return true
			}
		}
	}
	return false
}

// containsAffirmed: phrase bor va oldida "chưa"/"không" yo'q
func containsAffirmed(text, phrase string) bool {
	for from := 0; ; {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			return false
		}
		at := from + i
		before := strings.Fields(text[:at])
		if len(before) == 0 || !negationWords[before[len(before)-1]] {
			return true
		}
		from = at + len(phrase)
	}
}
