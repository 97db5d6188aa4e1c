package codec_test

import (
	"fmt"
	"math"

	"github.com/matzehuels/figwire/pkg/codec"
	"github.com/matzehuels/figwire/pkg/narray"
)

func ExampleEncode() {
	out, _ := codec.Encode(map[string]any{"a": 1, "b": math.NaN()}, false, codec.EngineJSON)
	fmt.Println(out)
	// Output: {"a":1,"b":null}
}

func ExampleEncode_array() {
	trace := map[string]any{
		"type": "scatter",
		"y":    narray.Floats([]float64{1.5, 2.5}),
	}
	out, _ := codec.Encode(trace, false, codec.EngineJSON)
	fmt.Println(out)
	// Output: {"type":"scatter","y":[1.5,2.5]}
}

func ExampleDecode() {
	v, _ := codec.Decode(`{"title": "trend"}`, codec.EngineJSON)
	fmt.Println(v.(map[string]any)["title"])
	// Output: trend
}
