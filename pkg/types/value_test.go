package types

import (
	"errors"
	"math"
	"testing"
	"time"

	terrors "github.com/arkilian/tabular/internal/errors"
)

func TestValue_String(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{Null(), "NULL"},
		{Bool(true), "True"},
		{Bool(false), "False"},
		{Int(-42), "-42"},
		{Float(200000), "200000.0"},
		{Float(0.25), "0.25"},
		{Float(math.Inf(1)), "+Inf"},
		{DateOf(NewDate(2024, time.March, 7)), "2024-03-07"},
		{Text("hello"), "hello"},
	}

	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.value.Kind(), got, tt.want)
		}
	}
}

func TestValue_Type(t *testing.T) {
	if _, ok := Null().Type(); ok {
		t.Error("absent value should have no type")
	}
	pairs := map[ColumnType]Value{
		TypeBoolean: Bool(true),
		TypeInteger: Int(1),
		TypeFloat:   Float(1.5),
		TypeDate:    DateOf(NewDate(2020, time.January, 1)),
		TypeText:    Text("x"),
	}
	for want, v := range pairs {
		got, ok := v.Type()
		if !ok || got != want {
			t.Errorf("Type() of %v = %v, want %v", v.Kind(), got, want)
		}
	}
}

func TestValue_Equal(t *testing.T) {
	if !Float(math.NaN()).Equal(Float(math.NaN())) {
		t.Error("NaN should be structurally equal to itself")
	}
	if Int(5).Equal(Float(5)) {
		t.Error("values of different kinds are not structurally equal")
	}
	if !Null().Equal(Value{}) {
		t.Error("zero Value should be absent")
	}
	if Text("a").Equal(Text("b")) {
		t.Error("different text should not be equal")
	}
}

func TestCompare(t *testing.T) {
	d1 := DateOf(NewDate(2020, time.January, 1))
	d2 := DateOf(NewDate(2021, time.January, 1))

	tests := []struct {
		name   string
		a, b   Value
		want   int
		wantOK bool
	}{
		{"ints", Int(3), Int(4), -1, true},
		{"int vs float", Int(5), Float(5), 0, true},
		{"float vs int", Float(5.5), Int(5), 1, true},
		{"bools", Bool(false), Bool(true), -1, true},
		{"dates", d2, d1, 1, true},
		{"text", Text("abc"), Text("abd"), -1, true},
		{"null", Null(), Int(1), 0, false},
		{"text vs int", Text("1"), Int(1), 0, false},
		{"bool vs date", Bool(true), d1, 0, false},
		{"nan", Float(math.NaN()), Float(1), 0, false},
	}

	for _, tt := range tests {
		got, ok := Compare(tt.a, tt.b)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("%s: Compare = (%d, %v), want (%d, %v)", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestEquivalent(t *testing.T) {
	if !Equivalent(Int(5), Float(5)) {
		t.Error("5 and 5.0 should be equivalent")
	}
	if Equivalent(Text("5"), Int(5)) {
		t.Error("text and int should not be equivalent")
	}
	if !Equivalent(Null(), Null()) {
		t.Error("two absent values should be equivalent")
	}
	if Equivalent(Null(), Int(0)) {
		t.Error("absent should not be equivalent to zero")
	}
}

func TestRow_CloneIsIndependent(t *testing.T) {
	r := Row{Int(1), Text("a")}
	c := r.Clone()
	c[0] = Int(2)
	if v, _ := r[0].AsInt(); v != 1 {
		t.Error("mutating a clone should not affect the original")
	}
	if !r.Equal(Row{Int(1), Text("a")}) {
		t.Error("original row changed")
	}
}

func TestParseColumnType(t *testing.T) {
	tests := map[string]ColumnType{
		"int":     TypeInteger,
		"INTEGER": TypeInteger,
		"Float":   TypeFloat,
		"bool":    TypeBoolean,
		"date":    TypeDate,
		"str":     TypeText,
		" text ":  TypeText,
	}
	for in, want := range tests {
		got, err := ParseColumnType(in)
		if err != nil || got != want {
			t.Errorf("ParseColumnType(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseColumnType("decimal"); !errors.Is(err, terrors.ErrInvalidArgument) {
		t.Errorf("expected invalid argument for unknown type, got %v", err)
	}
}

func TestDateOf_NormalizesFields(t *testing.T) {
	tests := []struct {
		in   Date
		want string
	}{
		{Date{Year: 2023, Month: 2, Day: 30}, "2023-03-02"},
		{Date{Year: 2024, Month: 13, Day: 1}, "2025-01-01"},
		{Date{Year: 2024, Month: 3, Day: 0}, "2024-02-29"},
	}
	for _, tt := range tests {
		v := DateOf(tt.in)
		d, _ := v.AsDate()
		if got := v.String(); got != tt.want {
			t.Errorf("DateOf(%+v) = %s, want %s", tt.in, got, tt.want)
		}
		if !v.Equal(DateOf(NewDate(d.Year, d.Month, d.Day))) {
			t.Errorf("DateOf(%+v) is not stable", tt.in)
		}
		if back := DateFromDays(d.DaysSinceEpoch()); back != d {
			t.Errorf("DateOf(%+v) day count does not round trip: %+v", tt.in, back)
		}
	}
}
