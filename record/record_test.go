package record

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/SBOne-Kenobi/OneFS/node"
	"github.com/SBOne-Kenobi/OneFS/util/hexdump"
)

func TestWriteParseFree(t *testing.T) {
	var buf bytes.Buffer
	want := Free{Header{Type: TypeFree, DataSize: 128}}
	if err := Write(&buf, want, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != Record(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestWriteParseRow(t *testing.T) {
	content := []byte("hello, container")
	row := Row{
		Header:   Header{Type: TypeRow},
		Filled:   int64(len(content)),
		Capacity: 64,
	}
	var buf bytes.Buffer
	if err := Write(&buf, row, bytes.NewReader(content)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	gotRow, ok := got.(Row)
	if !ok {
		t.Fatalf("got %T, want Row", got)
	}
	if gotRow.Filled != row.Filled || gotRow.Capacity != row.Capacity {
		t.Fatalf("got %+v, want filled=%d capacity=%d", gotRow, row.Filled, row.Capacity)
	}
	rest, err := io.ReadAll(&buf)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rest) != int(row.Capacity) {
		t.Fatalf("got %d trailing payload bytes, want %d", len(rest), row.Capacity)
	}
	if !bytes.Equal(rest[:len(content)], content) {
		t.Fatalf("payload prefix mismatch:\n%s", hexdump.Diff("content", content, rest[:len(content)]))
	}
	for _, b := range rest[len(content):] {
		if b != 0 {
			t.Fatalf("expected zero padding, got %v", rest[len(content):])
		}
	}
}

func TestWriteParseFile(t *testing.T) {
	want := File{
		Header:         Header{Type: TypeFile, DataSize: FilePayloadSize},
		Name:           "report.txt",
		ParentPtr:      42,
		ContentPtr:     1024,
		CreationTs:     1690000000,
		ModificationTs: 1690000100,
	}
	copy(want.MD5[:], []byte("0123456789abcdef"))

	var buf bytes.Buffer
	if err := Write(&buf, want, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	gotFile, ok := got.(File)
	if !ok {
		t.Fatalf("got %T, want File", got)
	}
	if diff := cmp.Diff(want, gotFile); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteParseFolder(t *testing.T) {
	want := Folder{
		Header:      Header{Type: TypeFolder, DataSize: FolderPayloadSize},
		Name:        "photos",
		ParentPtr:   0,
		ChildrenPtr: 256,
	}
	var buf bytes.Buffer
	if err := Write(&buf, want, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(Record(want), got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteNameTooLong(t *testing.T) {
	f := File{Name: strings.Repeat("x", NameSize+1)}
	var buf bytes.Buffer
	err := Write(&buf, f, nil)
	if err == nil {
		t.Fatal("expected error for over-long name")
	}
	if !node.IsIntegrityFault(err) {
		t.Fatalf("expected an integrity fault, got %v", err)
	}
}

func TestParseInvalidType(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(99)
	buf.Write(make([]byte, 8))
	_, err := Parse(&buf)
	if err == nil {
		t.Fatal("expected error for invalid type tag")
	}
	if !node.IsIntegrityFault(err) {
		t.Fatalf("expected an integrity fault, got %v", err)
	}
}

func TestParseEOF(t *testing.T) {
	var buf bytes.Buffer
	_, err := Parse(&buf)
	if err != io.EOF {
		t.Fatalf("got %v, want io.EOF", err)
	}
}

func TestParseShortHeader(t *testing.T) {
	buf := bytes.NewReader([]byte{byte(TypeFree), 0, 0})
	_, err := Parse(buf)
	if err == nil {
		t.Fatal("expected error for truncated header")
	}
	if !node.IsIntegrityFault(err) {
		t.Fatalf("expected an integrity fault, got %v", err)
	}
}

func TestRowCapacityMismatch(t *testing.T) {
	var hdr [HeaderSize]byte
	hdr[0] = byte(TypeRow)
	// data_size = 16 (filled+capacity prefix only, no payload room)
	hdr[8] = 16
	var payload [rowPayloadHeaderSize]byte
	// filled = 0, capacity = 100 -- disagrees with declared data_size
	payload[15] = 100
	buf := bytes.NewReader(append(hdr[:], payload[:]...))
	_, err := Parse(buf)
	if err == nil {
		t.Fatal("expected capacity mismatch error")
	}
	if !node.IsIntegrityFault(err) {
		t.Fatalf("expected an integrity fault, got %v", err)
	}
}
