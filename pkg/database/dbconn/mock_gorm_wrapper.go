package dbconn

import (
	"errors"
	"reflect"
)

// MockGormWrapper drives repository logic without a database. The repos
// only ever issue creates and a single where-then-first lookup, so that is
// the whole surface the mock records.
type MockGormWrapper interface {
	GormWrapper
	Created() []interface{}
	LastQuery() (query interface{}, args []interface{})
	SetError(error) MockGormWrapper
	SetResult(interface{}) MockGormWrapper
}

type mockGormWrapper struct {
	error   error
	created []interface{}
	query   interface{}
	args    []interface{}
	result  interface{}
}

func Mock() MockGormWrapper {
	return &mockGormWrapper{}
}

func (w *mockGormWrapper) Created() []interface{} {
	return w.created
}

func (w *mockGormWrapper) LastQuery() (interface{}, []interface{}) {
	return w.query, w.args
}

func (w *mockGormWrapper) SetError(e error) MockGormWrapper {
	w.error = e
	return w
}

// SetResult scripts the row the next First call fills its dest with.
func (w *mockGormWrapper) SetResult(r interface{}) MockGormWrapper {
	w.result = r
	return w
}

func (w *mockGormWrapper) Error() error {
	return w.error
}

func (w *mockGormWrapper) AutoMigrate(...interface{}) error {
	return nil
}

func (w *mockGormWrapper) Create(value interface{}) GormWrapper {
	if w.error == nil {
		w.created = append(w.created, value)
	}
	return w
}

func (w *mockGormWrapper) Where(query interface{}, args ...interface{}) GormWrapper {
	w.query = query
	w.args = args
	return w
}

func (w *mockGormWrapper) First(dest interface{}, conds ...interface{}) GormWrapper {
	if w.query == nil {
		w.error = errors.New("need to call query first")
		return w
	}
	if w.result == nil {
		if w.error == nil {
			w.error = errors.New("record not found")
		}
		return w
	}

	err := fill(dest, w.result)
	if w.error == nil {
		w.error = err
	}
	return w
}

func fill(dest, row interface{}) error {
	val := reflect.ValueOf(dest)
	if val.Kind() != reflect.Ptr {
		return errors.New("not a pointer")
	}

	val = val.Elem()

	rowVal := reflect.Indirect(reflect.ValueOf(row))
	if !val.Type().AssignableTo(rowVal.Type()) {
		return errors.New("mismatched types")
	}

	val.Set(rowVal)
	return nil
}
