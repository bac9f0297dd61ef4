package repo

import (
	"sort"
	"strings"
	"sync"
	"time"

	"norahair-backend/internal/domain"
	"norahair-backend/internal/usecase"
)

type MemoryOrderRepo struct {
	mu    sync.RWMutex
	m     map[string]*domain.Order
	byRef map[string]string
}

func NewMemoryOrderRepo() *MemoryOrderRepo {
	return &MemoryOrderRepo{m: make(map[string]*domain.Order), byRef: make(map[string]string)}
}

func (r *MemoryOrderRepo) Put(o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.PaystackReference != "" {
		if existing, ok := r.byRef[o.PaystackReference]; ok && existing != o.ID {
			return usecase.ErrConflict("payment reference already bound to another order")
		}
		r.byRef[o.PaystackReference] = o.ID
	}
	cp := *o
	r.m[o.ID] = &cp
	return nil
}

func (r *MemoryOrderRepo) Get(id string) (*domain.Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.m[id]
	if !ok {
		return nil, false
	}
	cp := *o
	return &cp, true
}

func (r *MemoryOrderRepo) GetByReference(ref string) (*domain.Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byRef[ref]
	if !ok {
		return nil, false
	}
	o, ok := r.m[id]
	if !ok {
		return nil, false
	}
	cp := *o
	return &cp, true
}

func (r *MemoryOrderRepo) List(page, pageSize int) ([]domain.Order, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]domain.Order, 0, len(r.m))
	for _, o := range r.m {
		all = append(all, *o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OrderDate.After(all[j].OrderDate) })
	total := len(all)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], total
}

func (r *MemoryOrderRepo) UpdateStatus(id string, status domain.OrderStatus) (*domain.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.m[id]
	if !ok {
		return nil, false
	}
	o.OrderStatus = status
	cp := *o
	return &cp, true
}

func (r *MemoryOrderRepo) UpdatePayment(id string, status domain.PaymentStatus, paidAt *time.Time) (*domain.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.m[id]
	if !ok {
		return nil, false
	}
	o.PaymentStatus = status
	if paidAt != nil {
		t := *paidAt
		o.PaidAt = &t
	}
	if status == domain.PaymentPaid {
		o.FirstPaymentStatus = domain.SplitPaid
	}
	cp := *o
	return &cp, true
}

// MarkPaid applies the paid transition only while the order is still unpaid.
// The check and the write happen under one lock so a verify/webhook race
// resolves to a single effective writer.
func (r *MemoryOrderRepo) MarkPaid(id string, paidAt time.Time) (*domain.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.m[id]
	if !ok {
		return nil, false
	}
	if o.PaymentStatus != domain.PaymentUnpaid {
		cp := *o
		return &cp, false
	}
	o.PaymentStatus = domain.PaymentPaid
	o.FirstPaymentStatus = domain.SplitPaid
	t := paidAt
	o.PaidAt = &t
	if o.OrderStatus == domain.OrderPending {
		o.OrderStatus = domain.OrderProcessing
	}
	cp := *o
	return &cp, true
}

// MarkFailed is the declined-side counterpart of MarkPaid, guarded the same
// way: a paid order is never demoted to failed.
func (r *MemoryOrderRepo) MarkFailed(id string) (*domain.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.m[id]
	if !ok {
		return nil, false
	}
	if o.PaymentStatus != domain.PaymentUnpaid {
		cp := *o
		return &cp, false
	}
	o.PaymentStatus = domain.PaymentFailed
	cp := *o
	return &cp, true
}

type MemoryProductRepo struct {
	mu sync.RWMutex
	m  map[string]*domain.Product
}

func NewMemoryProductRepo() *MemoryProductRepo {
	return &MemoryProductRepo{m: make(map[string]*domain.Product)}
}

func (r *MemoryProductRepo) Put(p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.m[p.ID] = &cp
	return nil
}

func (r *MemoryProductRepo) Get(id string) (*domain.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.m[id]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

func (r *MemoryProductRepo) List() ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Product, 0, len(r.m))
	for _, p := range r.m {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryProductRepo) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; !ok {
		return false
	}
	delete(r.m, id)
	return true
}

type MemoryContentRepo struct {
	mu           sync.RWMutex
	testimonials []domain.Testimonial
	subscribers  map[string]*domain.Subscriber
}

func NewMemoryContentRepo() *MemoryContentRepo {
	return &MemoryContentRepo{subscribers: make(map[string]*domain.Subscriber)}
}

func (r *MemoryContentRepo) ListTestimonials() ([]domain.Testimonial, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Testimonial, len(r.testimonials))
	copy(out, r.testimonials)
	return out, nil
}

func (r *MemoryContentRepo) PutTestimonial(t *domain.Testimonial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.testimonials = append(r.testimonials, *t)
	return nil
}

func (r *MemoryContentRepo) PutSubscriber(s *domain.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(s.Email)
	if _, ok := r.subscribers[key]; ok {
		return usecase.ErrConflict("email already subscribed")
	}
	cp := *s
	r.subscribers[key] = &cp
	return nil
}

type MemoryAdminRepo struct {
	mu sync.RWMutex
	m  map[string]*domain.AdminUser
}

func NewMemoryAdminRepo() *MemoryAdminRepo {
	return &MemoryAdminRepo{m: make(map[string]*domain.AdminUser)}
}

func (r *MemoryAdminRepo) PutAdmin(u *domain.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.m[strings.ToLower(u.Username)] = &cp
	return nil
}

func (r *MemoryAdminRepo) GetAdminByUsername(username string) (*domain.AdminUser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.m[strings.ToLower(username)]
	if !ok {
		return nil, false
	}
	cp := *u
	return &cp, true
}
