package model

import (
    "bytes"
    "encoding/json"
    "strconv"
)

// Amount is a decimal value the upstream sometimes serialises as a JSON
// number and sometimes as a quoted string ("150.00").
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
    b = bytes.TrimSpace(b)
    if len(b) == 0 || bytes.Equal(b, []byte("null")) {
        *a = 0
        return nil
    }
    if b[0] == '"' {
        var s string
        if err := json.Unmarshal(b, &s); err != nil {
            return err
        }
        if s == "" {
            *a = 0
            return nil
        }
        f, err := strconv.ParseFloat(s, 64)
        if err != nil {
            return err
        }
        *a = Amount(f)
        return nil
    }
    var f float64
    if err := json.Unmarshal(b, &f); err != nil {
        return err
    }
    *a = Amount(f)
    return nil
}
