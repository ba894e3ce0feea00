package visitor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeEntity struct {
	class  string
	fields map[string]interface{}
}

func (e fakeEntity) GetClassName() string        { return e.class }
func (e fakeEntity) Get(name string) interface{} { return e.fields[name] }

type op string

func (o op) String() string { return string(o) }

func pawn(id interface{}) fakeEntity {
	return fakeEntity{class: PlayerPawnClass, fields: map[string]interface{}{HeroIDField: id}}
}

func TestOnEntity(t *testing.T) {
	limit := int32(10)

	tests := []struct {
		name    string
		tickEnd *int32
		tick    int32
		entity  fakeEntity
		want    string
		wantErr error
	}{
		{"other entity", nil, 3, fakeEntity{class: "CCitadelPlayerController"}, "TICK: 3\n", nil},
		{"pawn uint32", nil, 4, pawn(uint32(15)), "TICK: 4\nID: 15\n", nil},
		{"pawn uint64", nil, 5, pawn(uint64(7)), "TICK: 5\nID: 7\n", nil},
		{"pawn int32", nil, 5, pawn(int32(1)), "TICK: 5\nID: 1\n", nil},
		{"at limit", &limit, 10, pawn(uint32(2)), "TICK: 10\nID: 2\n", nil},
		{"past limit", &limit, 11, pawn(uint32(2)), "", nil},
		{"past limit missing field", &limit, 12, pawn(nil), "", nil},
		{"missing hero id", nil, 6, pawn(nil), "TICK: 6\n", ErrMissingField},
		{"negative hero id", nil, 6, pawn(int32(-1)), "TICK: 6\n", ErrMissingField},
		{"string hero id", nil, 6, pawn("abrams"), "TICK: 6\n", ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			v := New(&out, tt.tickEnd)
			err := v.OnEntity(tt.tick, op("updated"), tt.entity)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("OnEntity() error = %v, want %v", err, tt.wantErr)
			}
			if got := out.String(); got != tt.want {
				t.Errorf("OnEntity() wrote %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsPlayerPawn(t *testing.T) {
	if !IsPlayerPawn(fakeEntity{class: "CCitadelPlayerPawn"}) {
		t.Errorf("IsPlayerPawn(CCitadelPlayerPawn) = false, want true")
	}
	for _, class := range []string{"", "CCitadelPlayerController", "CCitadelPlayerPawnBase", "ccitadelplayerpawn"} {
		if IsPlayerPawn(fakeEntity{class: class}) {
			t.Errorf("IsPlayerPawn(%q) = true, want false", class)
		}
	}
}

type countingEntity struct {
	fakeEntity
	gets int
}

func (e *countingEntity) Get(name string) interface{} {
	e.gets++
	return e.fakeEntity.Get(name)
}

func TestHeroIDReadsFieldOnce(t *testing.T) {
	for _, val := range []interface{}{uint32(4), "abrams"} {
		e := &countingEntity{fakeEntity: pawn(val)}
		_, err := HeroID(e)
		if e.gets != 1 {
			t.Errorf("HeroID(%v) read the field %d times, want 1", val, e.gets)
		}
		if _, isString := val.(string); isString && !strings.Contains(fmt.Sprint(err), "abrams") {
			t.Errorf("HeroID(%v) error = %v, want it to name the value", val, err)
		}
	}
}
