package xyzreader

import (
	"bytes"
	"crypto/sha1"
	"database/sql"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bodgit/xyzreader/bitmap"
	"github.com/bodgit/xyzreader/sample"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when an article or its photo does not exist.
var ErrNotFound = errors.New("article not found")

var publishedLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

// Photo describes an article photo without its pixel data.
type Photo struct {
	ID         int64
	SHA1       string
	Format     string
	Dimensions sample.Dimensions
}

// Article is a single catalog entry.
type Article struct {
	ID        string
	Title     string
	Author    string
	Published time.Time
	Photo     *Photo
}

// ArticleDB is the article catalog. It implements bitmap.Source, opening the
// photo of an article by the article ID.
type ArticleDB struct {
	db *sql.DB
}

// NewArticleDB opens or creates the SQLite database in file.
func NewArticleDB(file string) (*ArticleDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS photo (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, format TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, data BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS article (id INTEGER PRIMARY KEY NOT NULL, uid TEXT NOT NULL UNIQUE, title TEXT NOT NULL, author TEXT NOT NULL, published INTEGER, photo_id INTEGER, FOREIGN KEY(photo_id) REFERENCES photo(id))"); err != nil {
		db.Close()
		return nil, err
	}

	return &ArticleDB{
		db: db,
	}, nil
}

type xmlArticleDB struct {
	XMLName  xml.Name     `xml:"Articles"`
	Articles []xmlArticle `xml:"Article"`
}

type xmlArticle struct {
	XMLName   xml.Name `xml:"Article"`
	ID        string   `xml:"ID"`
	Title     string   `xml:"Title"`
	Author    string   `xml:"Author"`
	Published string   `xml:"Published"`
	Photo     string   `xml:"Photo"`
}

func parsePublished(s string) (sql.NullInt64, error) {
	var published sql.NullInt64
	if s = strings.TrimSpace(s); s == "" {
		return published, nil
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			published.Int64 = t.Unix()
			published.Valid = true
			return published, nil
		}
	}
	return published, fmt.Errorf("unrecognised publication time \"%s\"", s)
}

type execer interface {
	Exec(string, ...interface{}) (sql.Result, error)
	QueryRow(string, ...interface{}) *sql.Row
}

// ImportXML replaces the catalog with the articles in file, returning the
// number of articles imported. Photo paths are relative to file.
func (db *ArticleDB) ImportXML(file string) (int, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	b, err := ioutil.ReadAll(f)
	if err != nil {
		return 0, err
	}

	var xmlDB xmlArticleDB
	if err := xml.Unmarshal(b, &xmlDB); err != nil {
		return 0, err
	}

	tx, err := db.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err = tx.Exec("DELETE FROM article"); err != nil {
		return 0, err
	}

	if _, err = tx.Exec("DELETE FROM photo"); err != nil {
		return 0, err
	}

	for _, a := range xmlDB.Articles {
		if a.ID == "" {
			return 0, errors.New("article with no ID")
		}

		published, err := parsePublished(a.Published)
		if err != nil {
			return 0, err
		}

		var photo sql.NullInt64
		if a.Photo != "" {
			photo.Int64, err = addPhoto(tx, filepath.Join(filepath.Dir(file), filepath.Clean(strings.ReplaceAll(a.Photo, "\\", string(os.PathSeparator)))))
			if err != nil {
				return 0, err
			}
			photo.Valid = true
		}

		if _, err := tx.Exec("INSERT INTO article (uid, title, author, published, photo_id) VALUES (?, ?, ?, ?, ?)", a.ID, a.Title, a.Author, published, photo); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return len(xmlDB.Articles), nil
}

func addPhoto(e execer, file string) (int64, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return 0, err
	}

	// Only the header is decoded to validate the photo and learn its size
	dims, format, err := bitmap.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", file, err)
	}
	sha := fmt.Sprintf("%X", sha1.Sum(b))

	var id int64
	switch err := e.QueryRow("SELECT id FROM photo WHERE sha1 = ?", sha).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := e.Exec("INSERT INTO photo (sha1, format, width, height, data) VALUES (?, ?, ?, ?, ?)", sha, format, dims.Width, dims.Height, b)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// Close closes the database.
func (db *ArticleDB) Close() error {
	return db.db.Close()
}

const articleQuery = "SELECT a.uid, a.title, a.author, a.published, p.id, p.sha1, p.format, p.width, p.height FROM article AS a LEFT JOIN photo AS p ON a.photo_id = p.id"

type scanner interface {
	Scan(...interface{}) error
}

func scanArticle(s scanner) (*Article, error) {
	var a Article
	var published, photoID, width, height sql.NullInt64
	var sha, format sql.NullString
	if err := s.Scan(&a.ID, &a.Title, &a.Author, &published, &photoID, &sha, &format, &width, &height); err != nil {
		return nil, err
	}
	if published.Valid {
		a.Published = time.Unix(published.Int64, 0).UTC()
	}
	if photoID.Valid {
		a.Photo = &Photo{
			ID:     photoID.Int64,
			SHA1:   sha.String,
			Format: format.String,
			Dimensions: sample.Dimensions{
				Width:  int(width.Int64),
				Height: int(height.Int64),
			},
		}
	}
	return &a, nil
}

// Articles returns every article, newest first.
func (db *ArticleDB) Articles() ([]*Article, error) {
	rows, err := db.db.Query(articleQuery + " ORDER BY a.published IS NULL, a.published DESC, a.uid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}

	return articles, rows.Err()
}

// FindArticle returns the article with the given ID or nil if there isn't
// one.
func (db *ArticleDB) FindArticle(id string) (*Article, error) {
	switch a, err := scanArticle(db.db.QueryRow(articleQuery+" WHERE a.uid = ?", id)); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return a, nil
	default:
		return nil, err
	}
}

type photoReader struct {
	*bytes.Reader
}

func (photoReader) Close() error {
	return nil
}

// Open returns the encoded photo of the article with the given ID.
func (db *ArticleDB) Open(id string) (io.ReadCloser, error) {
	var data []byte
	switch err := db.db.QueryRow("SELECT p.data FROM article AS a JOIN photo AS p ON a.photo_id = p.id WHERE a.uid = ?", id).Scan(&data); err {
	case sql.ErrNoRows:
		return nil, ErrNotFound
	case nil:
		return photoReader{bytes.NewReader(data)}, nil
	default:
		return nil, err
	}
}

var _ bitmap.Source = new(ArticleDB)
