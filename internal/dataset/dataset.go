// Package dataset serves the static pokemon tables an assignment notebook
// works with: per-pokemon attributes and the attacker/defender type
// effectiveness matrix.
package dataset

import (
	"fmt"
	"io"
)

// Column names with integer values.
const (
	ColAttack         = "Attack"
	ColDefense        = "Defense"
	ColHP             = "HP"
	ColSpecialAttack  = "Sp. Atk"
	ColSpecialDefense = "Sp. Def"
	ColSpeed          = "Speed"
)

// Column names with string values.
const (
	ColName   = "Name"
	ColRegion = "Region"
	ColType1  = "Type 1"
	ColType2  = "Type 2"
)

var integerColumns = map[string]bool{
	ColAttack:         true,
	ColDefense:        true,
	ColHP:             true,
	ColSpecialAttack:  true,
	ColSpecialDefense: true,
	ColSpeed:          true,
}

// NotFoundError reports a lookup with an unknown key. Students misspell
// pokemon names constantly, so the message says so.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found. Please check your spelling.", e.Key)
}

// Field is one attribute of a record.
type Field struct {
	Name  string
	Value interface{} // int for integer columns, string otherwise
}

// Dataset is immutable after Load and safe for concurrent reads.
type Dataset struct {
	columns       []string
	names         []string
	records       map[string]map[string]interface{}
	effectiveness map[string]map[string]float64 // attacker -> defender -> multiplier
}

// Names returns the record names in file order.
func (d *Dataset) Names() []string {
	return append([]string(nil), d.names...)
}

func (d *Dataset) record(name string) (map[string]interface{}, error) {
	rec, ok := d.records[name]
	if !ok {
		return nil, &NotFoundError{Key: name}
	}
	return rec, nil
}

func (d *Dataset) str(name, col string) (string, error) {
	rec, err := d.record(name)
	if err != nil {
		return "", err
	}
	s, _ := rec[col].(string)
	return s, nil
}

func (d *Dataset) num(name, col string) (int, error) {
	rec, err := d.record(name)
	if err != nil {
		return 0, err
	}
	n, _ := rec[col].(int)
	return n, nil
}

// Region is where the pokemon was first discovered.
func (d *Dataset) Region(name string) (string, error) { return d.str(name, ColRegion) }

// Type1 is the pokemon's primary type.
func (d *Dataset) Type1(name string) (string, error) { return d.str(name, ColType1) }

// Type2 is the pokemon's secondary type.
func (d *Dataset) Type2(name string) (string, error) { return d.str(name, ColType2) }

// HP is the pokemon's hit points.
func (d *Dataset) HP(name string) (int, error) { return d.num(name, ColHP) }

// Attack affects how much physical damage the pokemon deals.
func (d *Dataset) Attack(name string) (int, error) { return d.num(name, ColAttack) }

// Defense affects how much physical damage the pokemon withstands.
func (d *Dataset) Defense(name string) (int, error) { return d.num(name, ColDefense) }

// SpecialAttack affects how much special damage the pokemon deals.
func (d *Dataset) SpecialAttack(name string) (int, error) { return d.num(name, ColSpecialAttack) }

// SpecialDefense affects how much special damage the pokemon withstands.
func (d *Dataset) SpecialDefense(name string) (int, error) { return d.num(name, ColSpecialDefense) }

// Speed decides which pokemon attacks first.
func (d *Dataset) Speed(name string) (int, error) { return d.num(name, ColSpeed) }

// TypeEffectiveness is the damage multiplier of attacker's type against defender's type.
func (d *Dataset) TypeEffectiveness(attacker, defender string) (float64, error) {
	row, ok := d.effectiveness[attacker]
	if !ok {
		return 0, &NotFoundError{Key: attacker}
	}
	m, ok := row[defender]
	if !ok {
		return 0, &NotFoundError{Key: defender}
	}
	return m, nil
}

// Attributes returns every attribute of a pokemon in column order.
func (d *Dataset) Attributes(name string) ([]Field, error) {
	rec, err := d.record(name)
	if err != nil {
		return nil, err
	}
	fields := make([]Field, 0, len(d.columns))
	for _, col := range d.columns {
		fields = append(fields, Field{Name: col, Value: rec[col]})
	}
	return fields, nil
}

// PrintAttributes writes one "<attribute> :  <value>" line per attribute.
func (d *Dataset) PrintAttributes(w io.Writer, name string) error {
	fields, err := d.Attributes(name)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%s :  %v\n", f.Name, f.Value); err != nil {
			return err
		}
	}
	return nil
}
