// Package connstore reads and writes "connected storage" game-save
// directories as used by Xbox consoles and the Xbox app on Windows.
//
// A storage directory holds a containers.index file describing a set of
// containers. Each container has its own directory holding a small blob
// manifest (container.<n>) and one data file per blob:
//
//	containers.index
//	<container id>/container.1
//	<container id>/<blob file id>
//
// Directory and blob file names are derived from GUIDs according to the
// platform the save came from; see [Platform].
//
// # Reading
//
//	st, err := connstore.Open(dir, connstore.WithReadOnly(true))
//	if err != nil {
//	    return err
//	}
//	c, err := st.Get("save.dat")
//	if err != nil {
//	    return err
//	}
//	rc, err := c.Open("")
//
// # Writing
//
// Blob data is written immediately; index and manifest changes are kept in
// memory until [Storage.Write] or [Storage.Close]:
//
//	st, err := connstore.Open(dir)
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//	c, err := st.Get("save.dat")
//	if err != nil {
//	    return err
//	}
//	err = c.Update(ctx, "", bytes.NewReader(data))
//
// Removed containers are only marked deleted; their files stay on disk.
//
// A Storage is not safe for concurrent use.
package connstore
