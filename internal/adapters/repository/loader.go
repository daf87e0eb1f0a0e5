package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/okian/squares/internal/domain/model"
)

// boardsFile is the on-disk layout of a pool definitions file.
type boardsFile struct {
	Pools []poolDoc `yaml:"pools"`
}

type poolDoc struct {
	ID      string              `yaml:"id"`
	Name    string              `yaml:"name"`
	TeamA   string              `yaml:"team_a"`
	TeamB   string              `yaml:"team_b"`
	Date    string              `yaml:"date"`
	Dynamic bool                `yaml:"dynamic"`
	AxisA   []*int              `yaml:"axis_a"`
	AxisB   []*int              `yaml:"axis_b"`
	AxesA   map[string][]*int   `yaml:"axes_a"`
	AxesB   map[string][]*int   `yaml:"axes_b"`
	Cells   map[string][]string `yaml:"cells"`
}

var dateLayouts = []string{"2006-01-02", "20060102"}

// LoadFile reads pools from a YAML file.
func LoadFile(ctx context.Context, path string) ([]*Pool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadPools, err)
	}
	defer f.Close()
	return Decode(ctx, f)
}

// Decode parses pools from YAML. Axis entries may be null for digits not
// drawn yet; a pool without an id gets a random one.
func Decode(ctx context.Context, r io.Reader) ([]*Pool, error) {
	var doc boardsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrLoadPools, err)
	}
	pools := make([]*Pool, 0, len(doc.Pools))
	for i, d := range doc.Pools {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := d.toPool()
		if err != nil {
			return nil, fmt.Errorf("pool %d: %w", i, err)
		}
		pools = append(pools, p)
	}
	return pools, nil
}

// Seed puts every pool into the store, stopping at the first invalid one.
func Seed(ctx context.Context, s Store, pools []*Pool) error {
	for _, p := range pools {
		if err := s.Put(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (d poolDoc) toPool() (*Pool, error) {
	p := &Pool{
		ID:    strings.TrimSpace(d.ID),
		Name:  d.Name,
		TeamA: d.TeamA,
		TeamB: d.TeamB,
		Grid:  model.NewGrid(),
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if d.Date != "" {
		date, err := parseDate(d.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPool, err)
		}
		p.Date = date
	}

	g := p.Grid
	g.Dynamic = d.Dynamic
	var err error
	if g.Axes[model.SideA], err = axisOf(d.AxisA); err != nil {
		return nil, fmt.Errorf("%w: axis_a: %w", ErrInvalidPool, err)
	}
	if g.Axes[model.SideB], err = axisOf(d.AxisB); err != nil {
		return nil, fmt.Errorf("%w: axis_b: %w", ErrInvalidPool, err)
	}
	for side, axes := range map[model.Side]map[string][]*int{model.SideA: d.AxesA, model.SideB: d.AxesB} {
		for label, raw := range axes {
			cp, ok := model.ParseCheckpoint(strings.ToUpper(label))
			if !ok || cp == model.Final {
				return nil, fmt.Errorf("%w: unknown quarter %q", ErrInvalidPool, label)
			}
			axis, err := axisOf(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s axis: %w", ErrInvalidPool, label, err)
			}
			g.SetQuarterAxis(side, cp, axis)
		}
	}
	for pos, owners := range d.Cells {
		row, col, err := parseCell(pos)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPool, err)
		}
		g.SetOwners(row, col, owners...)
	}
	return p, nil
}

// axisOf converts a YAML axis; an absent axis is fully unassigned.
func axisOf(raw []*int) (model.Axis, error) {
	if raw == nil {
		return model.UnsetAxis(), nil
	}
	digits := make([]int, len(raw))
	for i, d := range raw {
		if d == nil {
			digits[i] = int(model.NoDigit)
			continue
		}
		digits[i] = *d
	}
	return model.NewAxis(digits...)
}

func parseDate(v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", v)
}

// parseCell reads a "row,col" key.
func parseCell(pos string) (int, int, error) {
	r, c, ok := strings.Cut(pos, ",")
	if !ok {
		return 0, 0, fmt.Errorf("bad cell %q", pos)
	}
	row, err1 := strconv.Atoi(strings.TrimSpace(r))
	col, err2 := strconv.Atoi(strings.TrimSpace(c))
	if err1 != nil || err2 != nil || row < 0 || row >= model.AxisSize || col < 0 || col >= model.AxisSize {
		return 0, 0, fmt.Errorf("bad cell %q", pos)
	}
	return row, col, nil
}
