package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	iface "github.com/ipfs/boxo/coreiface"
	"github.com/ipfs/boxo/coreiface/options"
	"github.com/ipfs/boxo/coreiface/path"
	"github.com/ipfs/boxo/files"
	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/linkedpost/go-rewards/models"
)

const defaultStoreTimeout = 30 * time.Second

// Store is the content-addressed blob store for post records, backed by an
// IPFS node's RPC API.
type Store struct {
	core          iface.CoreAPI
	logger        models.Logger
	addrStr       string
	metricService models.MetricService
}

func createCoreApi(addrStr string) (*rpc.HttpApi, error) {
	addr, err := ma.NewMultiaddr(addrStr)
	if err != nil {
		// Not a multiaddress, fall back to treating it as a URL.
		c := &http.Client{
			Transport: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				DisableKeepAlives: true,
			},
		}
		coreApi, err := rpc.NewURLApiWithClient(addrStr, c)
		if err != nil {
			return nil, err
		}
		return coreApi, nil
	}

	coreApi, err := rpc.NewApi(addr)
	if err != nil {
		return nil, err
	}
	return coreApi, nil
}

func NewStoreWithCore(logger models.Logger, addrStr string, coreApi iface.CoreAPI, metricService models.MetricService) *Store {
	return &Store{core: coreApi, logger: logger, addrStr: addrStr, metricService: metricService}
}

func NewStore(logger models.Logger, addrStr string, metricService models.MetricService) *Store {
	coreApi, err := createCoreApi(addrStr)
	if err != nil {
		logger.Fatalf("Error creating ipfs client at %s: %v", addrStr, err)
	}
	return NewStoreWithCore(logger, addrStr, coreApi, metricService)
}

// PublishPost serializes the record and adds it to the store, returning the
// CID. The record carries its upload date, so a user resubmitting the same
// content on the same day lands on the same CID: one record per user per day.
func (s *Store) PublishPost(ctx context.Context, record *models.PostRecord) (string, error) {
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return "", models.NewUpstreamError("encoding post record", err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, defaultStoreTimeout)
	defer cancel()

	addedPath, err := s.core.Unixfs().Add(
		storeCtx,
		files.NewReaderFile(bytes.NewReader(recordBytes)),
		options.Unixfs.CidVersion(1),
		options.Unixfs.Pin(true),
	)
	if err != nil {
		return "", models.NewTransportError(fmt.Sprintf("storing post record on ipfs at %s", s.addrStr), err)
	}
	cidStr := addedPath.Cid().String()
	s.logger.Debugf("published post record %s as %s", record.StorageKey(), cidStr)
	s.metricService.Count(ctx, models.MetricName_PostPublished, 1)
	return cidStr, nil
}

// FetchPost reads a post record back by its CID.
func (s *Store) FetchPost(ctx context.Context, cidStr string) (*models.PostRecord, error) {
	parsedCid, err := cid.Parse(cidStr)
	if err != nil {
		return nil, models.NewUpstreamError(fmt.Sprintf("invalid cid %s", cidStr), err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, defaultStoreTimeout)
	defer cancel()

	node, err := s.core.Unixfs().Get(storeCtx, path.IpfsPath(parsedCid))
	if err != nil {
		return nil, models.NewTransportError(fmt.Sprintf("fetching %s from ipfs", cidStr), err)
	}
	file := files.ToFile(node)
	if file == nil {
		return nil, models.NewUpstreamError(fmt.Sprintf("cid %s is not a file", cidStr), nil)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err = buf.ReadFrom(file); err != nil {
		return nil, models.NewTransportError(fmt.Sprintf("reading %s from ipfs", cidStr), err)
	}
	record := new(models.PostRecord)
	if err = json.Unmarshal(buf.Bytes(), record); err != nil {
		return nil, models.NewUpstreamError(fmt.Sprintf("decoding post record %s", cidStr), err)
	}
	return record, nil
}
