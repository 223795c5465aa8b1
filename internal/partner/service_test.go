package partner

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryPartnerRepo struct {
	partners map[string]Partner
}

func newMemoryPartnerRepo(partners ...Partner) *memoryPartnerRepo {
	r := &memoryPartnerRepo{partners: make(map[string]Partner, len(partners))}
	for _, p := range partners {
		r.partners[p.Code] = p
	}
	return r
}

func (r *memoryPartnerRepo) FindByCode(ctx context.Context, code string) (*Partner, error) {
	p, ok := r.partners[code]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *memoryPartnerRepo) FindUnified(ctx context.Context, code, base string) ([]Partner, error) {
	var out []Partner
	for _, p := range r.partners {
		parent := ""
		if p.ParentCode != nil {
			parent = *p.ParentCode
		}
		if p.Code == code || InFamily(p.Code, parent, base) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryPartnerRepo) Search(ctx context.Context, term string, limit int) ([]Partner, error) {
	var out []Partner
	for _, p := range r.partners {
		if len(out) >= limit {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryPartnerRepo) SearchActiveSuppliers(ctx context.Context, term string, limit int) ([]Partner, error) {
	var out []Partner
	for _, p := range r.partners {
		if !p.IsActive() || IsLegacy(p.Code) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryPartnerRepo) ListActive(ctx context.Context) ([]Partner, error) {
	var out []Partner
	for _, p := range r.partners {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryPartnerRepo) ListByType(ctx context.Context, role string) ([]Partner, error) {
	var out []Partner
	for _, p := range r.partners {
		if p.Role != nil && *p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryPartnerRepo) ListAll(ctx context.Context, limit, offset int) ([]Partner, int, error) {
	codes := make([]string, 0, len(r.partners))
	for code := range r.partners {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	total := len(codes)
	if offset >= total {
		return nil, total, nil
	}
	codes = codes[offset:]
	if len(codes) > limit {
		codes = codes[:limit]
	}
	out := make([]Partner, 0, len(codes))
	for _, code := range codes {
		out = append(out, r.partners[code])
	}
	return out, total, nil
}

func (r *memoryPartnerRepo) BackfillParentLinks(ctx context.Context) (int, error) {
	updated := 0
	for code, p := range r.partners {
		if !IsLegacy(code) {
			continue
		}
		base := BaseCode(code)
		if _, ok := r.partners[base]; !ok {
			continue
		}
		if p.ParentCode != nil && *p.ParentCode == base {
			continue
		}
		parent := base
		p.ParentCode = &parent
		r.partners[code] = p
		updated++
	}
	return updated, nil
}

func (r *memoryPartnerRepo) Count(ctx context.Context) (int, error) {
	return len(r.partners), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strptr(s string) *string { return &s }

func activeSupplier(code, name string) Partner {
	return Partner{Code: code, Name: name, StatusDesc: strptr(statusActive)}
}

func TestResolveIsSymmetricAcrossFamily(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryPartnerRepo(
		activeSupplier("SLSICHWAN", "Ichwan Base"),
		activeSupplier("SLSICHWAN-1", "Ichwan Legacy 1"),
		activeSupplier("SLSICHWAN-2", "Ichwan Legacy 2"),
		Partner{Code: "SUPNEW", Name: "Modern Child", ParentCode: strptr("SLSICHWAN"), StatusDesc: strptr(statusActive)},
		activeSupplier("OTHER", "Unrelated"),
	)
	svc := NewService(repo, nil, testLogger())

	want := []string{"SLSICHWAN", "SLSICHWAN-1", "SLSICHWAN-2", "SUPNEW"}

	for _, input := range []string{"SLSICHWAN", "SLSICHWAN-1", "SLSICHWAN-2", "slsichwan-2 "} {
		codes, err := svc.Resolve(ctx, input)
		require.NoError(t, err)
		require.Equal(t, want, codes, "input %q", input)
	}
}

func TestResolveEmptyInput(t *testing.T) {
	svc := NewService(newMemoryPartnerRepo(), nil, testLogger())
	codes, err := svc.Resolve(context.Background(), "   ")
	require.NoError(t, err)
	require.Nil(t, codes)
}

func TestResolveUnknownCodeStillIncludesItself(t *testing.T) {
	svc := NewService(newMemoryPartnerRepo(), nil, testLogger())
	codes, err := svc.Resolve(context.Background(), "GHOST-7")
	require.NoError(t, err)
	require.Equal(t, []string{"GHOST", "GHOST-7"}, codes)
}

func TestResolveSuffixWinsOverParentPointer(t *testing.T) {
	// A record whose code carries a legacy suffix but whose parent pointer
	// disagrees resolves by its suffix-derived base, not the pointer.
	ctx := context.Background()
	repo := newMemoryPartnerRepo(
		activeSupplier("SLSICHWAN", "Ichwan Base"),
		Partner{Code: "SLSICHWAN-1", Name: "Conflicted", ParentCode: strptr("SOMEBODYELSE"), StatusDesc: strptr(statusActive)},
		activeSupplier("SOMEBODYELSE", "Somebody Else"),
	)
	svc := NewService(repo, nil, testLogger())

	codes, err := svc.Resolve(ctx, "SLSICHWAN-1")
	require.NoError(t, err)
	require.Contains(t, codes, "SLSICHWAN")
	require.Contains(t, codes, "SLSICHWAN-1")
	require.NotContains(t, codes, "SOMEBODYELSE")
}

func TestActiveSuppliersExcludeLegacyCodes(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryPartnerRepo(
		activeSupplier("SUP01", "Acme Co"),
		activeSupplier("SUP01-1", "Acme Legacy"),
		Partner{Code: "SUP02", Name: "Dormant", StatusDesc: strptr("Inactive")},
	)
	svc := NewService(repo, nil, testLogger())

	options, err := svc.ActiveSuppliers(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, options, 1)
	require.Equal(t, "SUP01", options[0].Code)
	require.Equal(t, "Acme Co", options[0].Label)
}

func TestSupplierByCodeRejectsLegacyAndInactive(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryPartnerRepo(
		activeSupplier("SUP01", "Acme Co"),
		activeSupplier("SUP01-1", "Acme Legacy"),
		Partner{Code: "SUP02", Name: "Dormant", StatusDesc: strptr("Inactive")},
	)
	svc := NewService(repo, nil, testLogger())

	opt, err := svc.SupplierByCode(ctx, "sup01")
	require.NoError(t, err)
	require.Equal(t, "SUP01", opt.Code)

	_, err = svc.SupplierByCode(ctx, "SUP01-1")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SupplierByCode(ctx, "SUP02")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SupplierByCode(ctx, "MISSING")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestActiveSupplierName(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryPartnerRepo(
		activeSupplier("SUP01", "Acme Co"),
		Partner{Code: "SUP02", Name: "Dormant", StatusDesc: strptr("Inactive")},
	)
	svc := NewService(repo, nil, testLogger())

	name, ok, err := svc.ActiveSupplierName(ctx, " sup01 ")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Acme Co", name)

	_, ok, err = svc.ActiveSupplierName(ctx, "SUP02")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = svc.ActiveSupplierName(ctx, "MISSING")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = svc.ActiveSupplierName(ctx, "")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBackfillIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryPartnerRepo(
		activeSupplier("SLSICHWAN", "Ichwan Base"),
		activeSupplier("SLSICHWAN-1", "Ichwan Legacy 1"),
		activeSupplier("SLSICHWAN-2", "Ichwan Legacy 2"),
		activeSupplier("ORPHAN-1", "No Base Exists"),
	)
	svc := NewService(repo, nil, testLogger())

	updated, err := svc.Backfill(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, updated)
	require.Equal(t, "SLSICHWAN", *repo.partners["SLSICHWAN-1"].ParentCode)
	require.Equal(t, "SLSICHWAN", *repo.partners["SLSICHWAN-2"].ParentCode)
	require.Nil(t, repo.partners["ORPHAN-1"].ParentCode)

	updated, err = svc.Backfill(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, updated)
}

func TestListAllPagination(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryPartnerRepo(
		activeSupplier("A1", "One"),
		activeSupplier("A2", "Two"),
		activeSupplier("A3", "Three"),
	)
	svc := NewService(repo, nil, testLogger())

	partners, page, err := svc.ListAll(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, partners, 1)
	require.Equal(t, "A3", partners[0].Code)
	require.Equal(t, 3, page.Total)
	require.Equal(t, 2, page.TotalPages)
	require.Equal(t, 2, page.Page)
}
