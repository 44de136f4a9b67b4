package nbt_test

import (
	"bytes"
	"testing"

	gonbt "github.com/Tnze/go-mc/nbt"
	"github.com/google/go-cmp/cmp"

	"github.com/astei/anvilview/nbt"
)

type section struct {
	Y      int8   `nbt:"Y"`
	Blocks []byte `nbt:"Blocks"`
}

type level struct {
	XPos          int32     `nbt:"xPos"`
	ZPos          int32     `nbt:"zPos"`
	InhabitedTime int64     `nbt:"InhabitedTime"`
	Tick          int16     `nbt:"Tick"`
	Scale         float32   `nbt:"Scale"`
	Speed         float64   `nbt:"Speed"`
	Name          string    `nbt:"Name"`
	HeightMap     []int32   `nbt:"HeightMap"`
	Sections      []section `nbt:"Sections"`
}

type chunk struct {
	Level level `nbt:"Level"`
}

func sampleChunk() chunk {
	return chunk{Level: level{
		XPos:          -33,
		ZPos:          4,
		InhabitedTime: 1 << 40,
		Tick:          -7,
		Scale:         0.25,
		Speed:         -3.5,
		Name:          "überworld",
		HeightMap:     []int32{64, 65, -1},
		Sections: []section{
			{Y: 0, Blocks: []byte{1, 2, 3}},
			{Y: 15, Blocks: []byte{4}},
		},
	}}
}

func sampleTag() *nbt.Tag {
	return nbt.NewCompound("",
		nbt.NewCompound("Level",
			nbt.New("xPos", nbt.Int(-33)),
			nbt.New("zPos", nbt.Int(4)),
			nbt.New("InhabitedTime", nbt.Long(1<<40)),
			nbt.New("Tick", nbt.Short(-7)),
			nbt.New("Scale", nbt.Float(0.25)),
			nbt.New("Speed", nbt.Double(-3.5)),
			nbt.New("Name", nbt.String("überworld")),
			nbt.New("HeightMap", nbt.IntArray{64, 65, -1}),
			nbt.NewList("Sections",
				&nbt.Compound{Tags: []*nbt.Tag{nbt.New("Y", nbt.Byte(0)), nbt.New("Blocks", nbt.ByteArray{1, 2, 3})}},
				&nbt.Compound{Tags: []*nbt.Tag{nbt.New("Y", nbt.Byte(15)), nbt.New("Blocks", nbt.ByteArray{4})}},
			),
		),
	)
}

func TestDecodeGoMC(t *testing.T) {
	var buf bytes.Buffer
	if err := gonbt.NewEncoder(&buf).Encode(sampleChunk(), ""); err != nil {
		t.Fatal(err)
	}
	got, err := nbt.Unmarshal(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sampleTag(), got); diff != "" {
		t.Errorf("decoded go-mc output mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeGoMC(t *testing.T) {
	data, err := nbt.MarshalBytes(sampleTag())
	if err != nil {
		t.Fatal(err)
	}
	var got chunk
	if err := gonbt.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sampleChunk(), got); diff != "" {
		t.Errorf("go-mc decode mismatch (-want +got):\n%s", diff)
	}
}
